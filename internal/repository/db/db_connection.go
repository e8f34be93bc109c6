package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaActuatorState = `
CREATE TABLE IF NOT EXISTS actuator_state (
    name TEXT PRIMARY KEY,
    state TEXT NOT NULL CHECK (state IN ('ON', 'OFF')),
    updated_at TIMESTAMP NOT NULL
);
`

const schemaFailsafeState = `
CREATE TABLE IF NOT EXISTS failsafe_state (
    flag TEXT PRIMARY KEY CHECK (flag IN ('global', 'climat', 'arrosage')),
    tripped BOOLEAN NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL
);
`

// failsafe_state files created before the reason column existed.
const countFailsafeReasonColumn = `SELECT COUNT(*) FROM pragma_table_info('failsafe_state') WHERE name = 'reason'`

const addFailsafeReasonColumn = `ALTER TABLE failsafe_state ADD COLUMN reason TEXT NOT NULL DEFAULT ''`

const schemaSettings = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaControlEvents = `
CREATE TABLE IF NOT EXISTS control_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const indexControlEvents = `
CREATE INDEX IF NOT EXISTS idx_control_events_occurred_at ON control_events (occurred_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaActuatorState,
		schemaFailsafeState,
		schemaSettings,
		schemaControlEvents,
		indexControlEvents,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	var n int
	if err := tx.QueryRow(countFailsafeReasonColumn).Scan(&n); err != nil {
		return fmt.Errorf("inspect failsafe_state: %w", err)
	}
	if n == 0 {
		if _, err := tx.Exec(addFailsafeReasonColumn); err != nil {
			return fmt.Errorf("add failsafe_state.reason: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
