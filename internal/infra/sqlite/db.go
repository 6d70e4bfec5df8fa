// Package sqlite is the single persistence layer. It implements every store
// interface in the domain package on one embedded database, using the pure-Go
// driver so builds need no cgo.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// timeFormat is how timestamps are stored. Day columns keep the plain
// YYYY-MM-DD strings the calendar package produces.
const timeFormat = "2006-01-02T15:04:05.999999999Z07:00" // time.RFC3339Nano

// DB wraps the SQL handle and exposes typed query methods.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path, applies pragmas,
// and runs all migrations.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := handle.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := handle.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := handle.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error { return db.db.Close() }

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, stmt)
		}
	}
	return nil
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Accounts
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL UNIQUE,
			role          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			blocked       INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL
		)`,

		// Append-only XP ledger. unique_key backs the insert-ignore
		// idempotence guard; NULL rows never collide with each other.
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL REFERENCES users(id),
			delta        INTEGER NOT NULL,
			kind         TEXT NOT NULL,
			reference_id TEXT NOT NULL DEFAULT '',
			note         TEXT NOT NULL DEFAULT '',
			unique_key   TEXT UNIQUE,
			created_at   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON ledger_entries(user_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_ref ON ledger_entries(reference_id)`,

		// Consumption requests
		`CREATE TABLE IF NOT EXISTS requests (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id),
			amount           REAL NOT NULL,
			reason_primary   TEXT NOT NULL,
			reason_secondary TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'PENDING',
			day              TEXT NOT NULL,
			coupon_code      TEXT NOT NULL UNIQUE,
			created_at       TEXT NOT NULL,
			approved_at      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_day ON requests(day, status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_user ON requests(user_id, created_at)`,

		// Reward catalog and redemptions
		`CREATE TABLE IF NOT EXISTS rewards (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			cost_xp     INTEGER NOT NULL,
			daily_limit INTEGER NOT NULL DEFAULT 0,
			active      INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS redemptions (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			reward_id    TEXT NOT NULL REFERENCES rewards(id),
			status       TEXT NOT NULL DEFAULT 'PENDING',
			day          TEXT NOT NULL,
			coupon_code  TEXT NOT NULL UNIQUE,
			created_at   TEXT NOT NULL,
			validated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_redemptions_status ON redemptions(status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_redemptions_daily ON redemptions(user_id, reward_id, day)`,

		// Per-day budget overrides
		`CREATE TABLE IF NOT EXISTS day_limits (
			day            TEXT PRIMARY KEY,
			limit_quantity REAL NOT NULL
		)`,

		// Singleton economy configuration
		`CREATE TABLE IF NOT EXISTS economy_config (
			id                      INTEGER PRIMARY KEY CHECK (id = 1),
			default_daily_limit     REAL NOT NULL,
			extra_cost_half_unit    INTEGER NOT NULL,
			extra_cost_full_unit    INTEGER NOT NULL,
			weekly_reduction_pct    REAL NOT NULL,
			daily_allowance_enabled INTEGER NOT NULL,
			xp_per_unit             INTEGER NOT NULL,
			linear_pricing_enabled  INTEGER NOT NULL,
			rate_per_unit           INTEGER NOT NULL,
			extra_rate_per_unit     INTEGER NOT NULL,
			excess_threshold        REAL NOT NULL,
			excess_penalty_xp       INTEGER NOT NULL,
			updated_at              TEXT NOT NULL
		)`,

		// Mission catalog and per-user period instances
		`CREATE TABLE IF NOT EXISTS missions (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			kind           TEXT NOT NULL,
			xp_reward      INTEGER NOT NULL DEFAULT 0,
			condition_type TEXT NOT NULL,
			target_value   REAL NOT NULL DEFAULT 0,
			active         INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS mission_instances (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			mission_id   TEXT NOT NULL REFERENCES missions(id),
			period_start TEXT NOT NULL,
			period_end   TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'IN_PROGRESS',
			xp_awarded   INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			UNIQUE(user_id, mission_id, period_start)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_instances_user ON mission_instances(user_id, status)`,

		// API sessions
		`CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// placeholders returns "?, ?, ..." with n slots for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
