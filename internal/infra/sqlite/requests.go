package sqlite

import (
	"database/sql"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.RequestStore = (*DB)(nil)

// ─── Request Operations ─────────────────────────────────────────────────────

// CreateRequest inserts a new consumption request.
func (db *DB) CreateRequest(r domain.ConsumptionRequest) error {
	_, err := db.db.Exec(`
		INSERT INTO requests (id, user_id, amount, reason_primary, reason_secondary, status, day, coupon_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.Amount, r.ReasonPrimary, r.ReasonSecondary, string(r.Status), r.Day, r.CouponCode, r.CreatedAt.Format(timeFormat))
	return err
}

// GetRequest retrieves a request by id.
func (db *DB) GetRequest(id string) (*domain.ConsumptionRequest, error) {
	return db.queryOneRequest(`WHERE id = ?`, id)
}

// GetRequestByCoupon retrieves a request by its coupon code.
func (db *DB) GetRequestByCoupon(code string) (*domain.ConsumptionRequest, error) {
	return db.queryOneRequest(`WHERE coupon_code = ?`, code)
}

// TransitionRequest atomically moves a PENDING request to a terminal status.
// The WHERE status = 'PENDING' guard makes concurrent decisions race-safe:
// exactly one caller sees true.
func (db *DB) TransitionRequest(id string, to domain.RequestStatus) (bool, error) {
	var approvedAt *string
	if to == domain.RequestApproved {
		s := time.Now().Format(timeFormat)
		approvedAt = &s
	}
	res, err := db.db.Exec(`
		UPDATE requests SET status = ?, approved_at = ?
		WHERE id = ? AND status = 'PENDING'
	`, string(to), approvedAt, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	var exists int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE id = ?`, id).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// ListRequests returns requests in a status, newest first.
func (db *DB) ListRequests(status domain.RequestStatus, limit, offset int) ([]domain.ConsumptionRequest, error) {
	return db.queryRequests(`WHERE status = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		string(status), normalizeLimit(limit), offset)
}

// ListRequestsForUser returns one user's requests, newest first.
func (db *DB) ListRequestsForUser(userID string, limit, offset int) ([]domain.ConsumptionRequest, error) {
	return db.queryRequests(`WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		userID, normalizeLimit(limit), offset)
}

// ApprovedTotalForDay sums APPROVED amounts for a day across all users.
func (db *DB) ApprovedTotalForDay(day string) (float64, error) {
	var total float64
	err := db.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM requests
		WHERE day = ? AND status = 'APPROVED'
	`, day).Scan(&total)
	return total, err
}

// ApprovedTotalForDays returns the approved total per day, zero-filled for
// days with no rows.
func (db *DB) ApprovedTotalForDays(days []string) (map[string]float64, error) {
	out := make(map[string]float64, len(days))
	if len(days) == 0 {
		return out, nil
	}
	args := make([]interface{}, len(days))
	for i, d := range days {
		out[d] = 0
		args[i] = d
	}
	rows, err := db.db.Query(`
		SELECT day, SUM(amount) FROM requests
		WHERE day IN (`+placeholders(len(days))+`) AND status = 'APPROVED'
		GROUP BY day
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var total float64
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		out[day] = total
	}
	return out, rows.Err()
}

// CountRequestsForUser counts one user's requests in a status.
func (db *DB) CountRequestsForUser(userID string, status domain.RequestStatus) (int, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = ?`, userID, string(status)).Scan(&n)
	return n, err
}

// ─── Scan Helpers ───────────────────────────────────────────────────────────

const requestColumns = `id, user_id, amount, reason_primary, reason_secondary, status, day, coupon_code, created_at, approved_at`

func (db *DB) queryOneRequest(where string, args ...interface{}) (*domain.ConsumptionRequest, error) {
	r, err := scanRequest(db.db.QueryRow(`SELECT `+requestColumns+` FROM requests `+where, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) queryRequests(tail string, args ...interface{}) ([]domain.ConsumptionRequest, error) {
	rows, err := db.db.Query(`SELECT `+requestColumns+` FROM requests `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ConsumptionRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (domain.ConsumptionRequest, error) {
	var r domain.ConsumptionRequest
	var status, createdStr string
	var approvedStr sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &r.Amount, &r.ReasonPrimary, &r.ReasonSecondary,
		&status, &r.Day, &r.CouponCode, &createdStr, &approvedStr); err != nil {
		return domain.ConsumptionRequest{}, err
	}
	r.Status = domain.RequestStatus(status)
	r.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	if approvedStr.Valid {
		t, _ := time.Parse(timeFormat, approvedStr.String)
		r.ApprovedAt = &t
	}
	return r, nil
}

// normalizeLimit maps "no limit" to SQLite's unlimited LIMIT sentinel.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
