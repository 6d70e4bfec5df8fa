package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.UserStore = (*DB)(nil)

// ─── User Operations ────────────────────────────────────────────────────────

// CreateUser inserts a new account.
func (db *DB) CreateUser(u domain.User) error {
	_, err := db.db.Exec(`
		INSERT INTO users (id, name, role, password_hash, blocked, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, string(u.Role), u.PasswordHash, boolToInt(u.Blocked), u.CreatedAt.Format(timeFormat))
	return err
}

// GetUser retrieves an account by id.
func (db *DB) GetUser(id string) (*domain.User, error) {
	return db.scanUser(db.db.QueryRow(`
		SELECT id, name, role, password_hash, blocked, created_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByName retrieves an account by its unique name.
func (db *DB) GetUserByName(name string) (*domain.User, error) {
	return db.scanUser(db.db.QueryRow(`
		SELECT id, name, role, password_hash, blocked, created_at
		FROM users WHERE name = ?
	`, name))
}

// ListUsers returns all accounts ordered by name.
func (db *DB) ListUsers() ([]domain.User, error) {
	rows, err := db.db.Query(`
		SELECT id, name, role, password_hash, blocked, created_at
		FROM users ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetUserBlocked flips the blocked flag on an account.
func (db *DB) SetUserBlocked(id string, blocked bool) error {
	res, err := db.db.Exec(`UPDATE users SET blocked = ? WHERE id = ?`, boolToInt(blocked), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanUser(row *sql.Row) (*domain.User, error) {
	u, err := scanUserRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return u, err
}

func scanUserRow(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role, createdStr string
	var blocked int
	if err := row.Scan(&u.ID, &u.Name, &role, &u.PasswordHash, &blocked, &createdStr); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.Blocked = blocked == 1
	u.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	return &u, nil
}
