package sqlite

import (
	"time"

	"github.com/pufflog/pufflog/internal/domain"
)

var _ domain.LedgerStore = (*DB)(nil)

// ─── Ledger Operations ──────────────────────────────────────────────────────
// Entries are append-only: no UPDATE or DELETE ever touches this table, and
// a balance is always SUM(delta), never a cached column.

// AppendEntry inserts a ledger entry. Fails with ErrUserNotFound when the
// user does not exist. Negative resulting balances are allowed.
func (db *DB) AppendEntry(e domain.LedgerEntry) (int64, error) {
	return db.appendEntry(e, nil)
}

// AppendEntryUnique inserts an entry guarded by a uniqueness key. A second
// insert with the same key is silently ignored and reported as (0, false).
func (db *DB) AppendEntryUnique(e domain.LedgerEntry, uniqueKey string) (int64, bool, error) {
	id, err := db.appendEntry(e, &uniqueKey)
	if err != nil {
		return 0, false, err
	}
	return id, id != 0, nil
}

func (db *DB) appendEntry(e domain.LedgerEntry, uniqueKey *string) (int64, error) {
	var exists int
	if err := db.db.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, e.UserID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, domain.ErrUserNotFound
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := db.db.Exec(`
		INSERT OR IGNORE INTO ledger_entries (user_id, delta, kind, reference_id, note, unique_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.UserID, e.Delta, string(e.Kind), e.ReferenceID, e.Note, uniqueKey, createdAt.Format(timeFormat))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil // unique_key collision swallowed by OR IGNORE
	}
	return res.LastInsertId()
}

// Balance sums delta over all entries for the user.
func (db *DB) Balance(userID string) (int64, error) {
	var sum int64
	err := db.db.QueryRow(`
		SELECT COALESCE(SUM(delta), 0) FROM ledger_entries WHERE user_id = ?
	`, userID).Scan(&sum)
	return sum, err
}

// EntriesFor returns the user's entries, newest first. limit <= 0 means all.
func (db *DB) EntriesFor(userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 is unlimited
	}
	rows, err := db.db.Query(`
		SELECT id, user_id, delta, kind, reference_id, note, created_at
		FROM ledger_entries WHERE user_id = ?
		ORDER BY id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindEntry returns the oldest entry matching reference id and one of the
// given kinds, or nil when none exists.
func (db *DB) FindEntry(referenceID string, kinds []domain.EntryKind) (*domain.LedgerEntry, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	args := []interface{}{referenceID}
	for _, k := range kinds {
		args = append(args, string(k))
	}
	rows, err := db.db.Query(`
		SELECT id, user_id, delta, kind, reference_id, note, created_at
		FROM ledger_entries
		WHERE reference_id = ? AND kind IN (`+placeholders(len(kinds))+`)
		ORDER BY id LIMIT 1
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// HasEntryOnDay reports whether the user has an entry of one of the given
// kinds carrying the day marker for the given day.
func (db *DB) HasEntryOnDay(userID, day string, kinds []domain.EntryKind) (bool, error) {
	if len(kinds) == 0 {
		return false, nil
	}
	args := []interface{}{userID, "day:" + day}
	for _, k := range kinds {
		args = append(args, string(k))
	}
	var count int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM ledger_entries
		WHERE user_id = ? AND note = ? AND kind IN (`+placeholders(len(kinds))+`)
	`, args...).Scan(&count)
	return count > 0, err
}

func scanEntry(row rowScanner) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var kind, createdStr string
	if err := row.Scan(&e.ID, &e.UserID, &e.Delta, &kind, &e.ReferenceID, &e.Note, &createdStr); err != nil {
		return domain.LedgerEntry{}, err
	}
	e.Kind = domain.EntryKind(kind)
	e.CreatedAt, _ = time.Parse(timeFormat, createdStr)
	return e, nil
}
