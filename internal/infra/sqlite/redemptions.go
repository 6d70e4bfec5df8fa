package sqlite

import (
	"database/sql"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.RedemptionStore = (*DB)(nil)

// ─── Redemption Operations ──────────────────────────────────────────────────

// CreateRedemption inserts a new reward redemption.
func (db *DB) CreateRedemption(r domain.RewardRedemption) error {
	_, err := db.db.Exec(`
		INSERT INTO redemptions (id, user_id, reward_id, status, day, coupon_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.RewardID, string(r.Status), r.Day, r.CouponCode, r.CreatedAt.Format(timeFormat))
	return err
}

// GetRedemption retrieves a redemption by id.
func (db *DB) GetRedemption(id string) (*domain.RewardRedemption, error) {
	return db.queryOneRedemption(`WHERE id = ?`, id)
}

// GetRedemptionByCoupon retrieves a redemption by its coupon code.
func (db *DB) GetRedemptionByCoupon(code string) (*domain.RewardRedemption, error) {
	return db.queryOneRedemption(`WHERE coupon_code = ?`, code)
}

// TransitionRedemption atomically moves a PENDING redemption to a terminal
// status, mirroring TransitionRequest.
func (db *DB) TransitionRedemption(id string, to domain.RedemptionStatus) (bool, error) {
	var validatedAt *string
	if to == domain.RedemptionValidated {
		s := time.Now().Format(timeFormat)
		validatedAt = &s
	}
	res, err := db.db.Exec(`
		UPDATE redemptions SET status = ?, validated_at = ?
		WHERE id = ? AND status = 'PENDING'
	`, string(to), validatedAt, id)
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
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM redemptions WHERE id = ?`, id).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// ListRedemptions returns redemptions in a status, newest first.
func (db *DB) ListRedemptions(status domain.RedemptionStatus, limit, offset int) ([]domain.RewardRedemption, error) {
	rows, err := db.db.Query(`
		SELECT `+redemptionColumns+` FROM redemptions
		WHERE status = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?
	`, string(status), normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRedemptionsForDay counts a user's non-rejected redemptions of a reward
// on a day. Rejected ones do not consume the daily quota.
func (db *DB) CountRedemptionsForDay(userID, rewardID, day string) (int, error) {
	var n int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM redemptions
		WHERE user_id = ? AND reward_id = ? AND day = ? AND status != 'REJECTED'
	`, userID, rewardID, day).Scan(&n)
	return n, err
}

// ─── Reward Catalog Operations ──────────────────────────────────────────────

// GetReward retrieves a catalog reward by id.
func (db *DB) GetReward(id string) (*domain.Reward, error) {
	var r domain.Reward
	var active int
	err := db.db.QueryRow(`
		SELECT id, title, cost_xp, daily_limit, active FROM rewards WHERE id = ?
	`, id).Scan(&r.ID, &r.Title, &r.CostXp, &r.DailyLimit, &active)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Active = active == 1
	return &r, nil
}

// ListRewards returns catalog rewards ordered by cost, cheapest first.
func (db *DB) ListRewards(activeOnly bool) ([]domain.Reward, error) {
	query := `SELECT id, title, cost_xp, daily_limit, active FROM rewards`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY cost_xp, title`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reward
	for rows.Next() {
		var r domain.Reward
		var active int
		if err := rows.Scan(&r.ID, &r.Title, &r.CostXp, &r.DailyLimit, &active); err != nil {
			return nil, err
		}
		r.Active = active == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateReward inserts a catalog reward.
func (db *DB) CreateReward(r domain.Reward) error {
	_, err := db.db.Exec(`
		INSERT INTO rewards (id, title, cost_xp, daily_limit, active)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.Title, r.CostXp, r.DailyLimit, boolToInt(r.Active))
	return err
}

// SetRewardActive flips a reward's active flag.
func (db *DB) SetRewardActive(id string, active bool) error {
	res, err := db.db.Exec(`UPDATE rewards SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ─── Scan Helpers ───────────────────────────────────────────────────────────

const redemptionColumns = `id, user_id, reward_id, status, day, coupon_code, created_at, validated_at`

func (db *DB) queryOneRedemption(where string, args ...interface{}) (*domain.RewardRedemption, error) {
	r, err := scanRedemption(db.db.QueryRow(`SELECT `+redemptionColumns+` FROM redemptions `+where, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRedemption(row rowScanner) (domain.RewardRedemption, error) {
	var r domain.RewardRedemption
	var status, createdStr string
	var validatedStr sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &r.RewardID, &status, &r.Day, &r.CouponCode, &createdStr, &validatedStr); err != nil {
		return domain.RewardRedemption{}, err
	}
	r.Status = domain.RedemptionStatus(status)
	r.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	if validatedStr.Valid {
		t, _ := time.Parse(timeFormat, validatedStr.String)
		r.ValidatedAt = &t
	}
	return r, nil
}
