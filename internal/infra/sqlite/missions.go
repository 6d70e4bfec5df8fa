package sqlite

import (
	"database/sql"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.MissionStore = (*DB)(nil)

// ─── Mission Catalog Operations ─────────────────────────────────────────────

// ListMissions returns catalog missions, ordered by title.
func (db *DB) ListMissions(activeOnly bool) ([]domain.Mission, error) {
	query := `SELECT id, title, kind, xp_reward, condition_type, target_value, active FROM missions`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY title`

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMission retrieves a catalog mission by id.
func (db *DB) GetMission(id string) (*domain.Mission, error) {
	m, err := scanMission(db.db.QueryRow(`
		SELECT id, title, kind, xp_reward, condition_type, target_value, active
		FROM missions WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMission inserts a catalog mission.
func (db *DB) CreateMission(m domain.Mission) error {
	_, err := db.db.Exec(`
		INSERT INTO missions (id, title, kind, xp_reward, condition_type, target_value, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, string(m.Kind), m.XpReward, string(m.ConditionType), m.TargetValue, boolToInt(m.Active))
	return err
}

// ─── Instance Operations ────────────────────────────────────────────────────

// EnsureInstance inserts the instance unless one already exists for
// (user, mission, periodStart); either way it returns the stored row. The
// UNIQUE constraint plus OR IGNORE makes concurrent ensures converge on one
// row without a transaction.
func (db *DB) EnsureInstance(inst domain.UserMissionInstance) (*domain.UserMissionInstance, error) {
	_, err := db.db.Exec(`
		INSERT OR IGNORE INTO mission_instances (id, user_id, mission_id, period_start, period_end, status, xp_awarded)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, inst.ID, inst.UserID, inst.MissionID, inst.PeriodStart, inst.PeriodEnd,
		string(inst.Status), boolToInt(inst.XpAwarded))
	if err != nil {
		return nil, err
	}

	got, err := scanInstance(db.db.QueryRow(`
		SELECT `+instanceColumns+` FROM mission_instances
		WHERE user_id = ? AND mission_id = ? AND period_start = ?
	`, inst.UserID, inst.MissionID, inst.PeriodStart))
	if err != nil {
		return nil, err
	}
	return &got, nil
}

// ListInstancesForUser returns all of a user's mission instances.
func (db *DB) ListInstancesForUser(userID string) ([]domain.UserMissionInstance, error) {
	rows, err := db.db.Query(`
		SELECT `+instanceColumns+` FROM mission_instances
		WHERE user_id = ? ORDER BY period_start DESC, mission_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserMissionInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// FinalizeInstance atomically moves an IN_PROGRESS instance to a terminal
// status and sets the permanent xp_awarded guard. Returns false when the
// instance was already finalized.
func (db *DB) FinalizeInstance(id string, to domain.MissionStatus) (bool, error) {
	res, err := db.db.Exec(`
		UPDATE mission_instances SET status = ?, xp_awarded = 1, completed_at = ?
		WHERE id = ? AND status = 'IN_PROGRESS'
	`, string(to), time.Now().Format(timeFormat), id)
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
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM mission_instances WHERE id = ?`, id).Scan(&exists); err != nil {
		return false, err
	}
	if exists == 0 {
		return false, domain.ErrNotFound
	}
	return false, nil
}

// ─── Scan Helpers ───────────────────────────────────────────────────────────

const instanceColumns = `id, user_id, mission_id, period_start, period_end, status, xp_awarded, completed_at`

func scanMission(row rowScanner) (domain.Mission, error) {
	var m domain.Mission
	var kind, condition string
	var active int
	if err := row.Scan(&m.ID, &m.Title, &kind, &m.XpReward, &condition, &m.TargetValue, &active); err != nil {
		return domain.Mission{}, err
	}
	m.Kind = domain.MissionKind(kind)
	m.ConditionType = domain.ConditionType(condition)
	m.Active = active == 1
	return m, nil
}

func scanInstance(row rowScanner) (domain.UserMissionInstance, error) {
	var inst domain.UserMissionInstance
	var status string
	var awarded int
	var completedStr sql.NullString
	if err := row.Scan(&inst.ID, &inst.UserID, &inst.MissionID, &inst.PeriodStart,
		&inst.PeriodEnd, &status, &awarded, &completedStr); err != nil {
		return domain.UserMissionInstance{}, err
	}
	inst.Status = domain.MissionStatus(status)
	inst.XpAwarded = awarded == 1
	if completedStr.Valid {
		t, _ := time.Parse(timeFormat, completedStr.String)
		inst.CompletedAt = &t
	}
	return inst, nil
}
