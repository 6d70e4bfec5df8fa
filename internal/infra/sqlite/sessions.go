package sqlite

import (
	"database/sql"
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.SessionProvider = (*DB)(nil)

// ─── Session Operations ─────────────────────────────────────────────────────
// Bearer tokens are opaque random strings with a server-side expiry. Expired
// rows are deleted lazily on lookup.

// CreateSession stores a session token for a user.
func (db *DB) CreateSession(token, userID string, ttl time.Duration) error {
	now := time.Now()
	_, err := db.db.Exec(`
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, token, userID, now.Format(timeFormat), now.Add(ttl).Format(timeFormat))
	return err
}

// DeleteSession revokes a session token. Unknown tokens are a no-op.
func (db *DB) DeleteSession(token string) error {
	_, err := db.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// CurrentUser resolves a session token to its user. Expired or unknown
// tokens yield ErrUnauthorized.
func (db *DB) CurrentUser(token string) (*domain.User, error) {
	var userID, expiresStr string
	err := db.db.QueryRow(`
		SELECT user_id, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&userID, &expiresStr)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	expires, _ := time.Parse(timeFormat, expiresStr)
	if time.Now().After(expires) {
		db.DeleteSession(token)
		return nil, domain.ErrUnauthorized
	}
	return db.GetUser(userID)
}
