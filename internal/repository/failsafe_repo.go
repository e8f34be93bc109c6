package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type FailsafeSQLite struct {
	db *sql.DB
}

func NewFailsafeSQLite(db *sql.DB) *FailsafeSQLite {
	return &FailsafeSQLite{db: db}
}

var _ FailsafeRepo = (*FailsafeSQLite)(nil)

const (
	upsertFailsafeSQL = `
		INSERT INTO failsafe_state (flag, tripped, reason, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(flag) DO UPDATE SET
			tripped=excluded.tripped,
			reason=excluded.reason,
			updated_at=excluded.updated_at
	`

	selectFailsafeSQL = `SELECT flag, tripped, reason FROM failsafe_state`
)

// SaveFlag upserts one flag. The reason is kept so a trip can be cleared by
// the same condition that caused it after a restart.
func (r *FailsafeSQLite) SaveFlag(ctx context.Context, flag string, f FailsafeFlag, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, upsertFailsafeSQL, flag, f.Tripped, f.Reason, at.UTC()); err != nil {
		return fmt.Errorf("save failsafe flag %q: %w", flag, err)
	}
	return nil
}

// LoadFlags returns the persisted flags; missing flags are simply absent from the map.
func (r *FailsafeSQLite) LoadFlags(ctx context.Context) (map[string]FailsafeFlag, error) {
	rows, err := r.db.QueryContext(ctx, selectFailsafeSQL)
	if err != nil {
		return nil, fmt.Errorf("select failsafe flags: %w", err)
	}
	defer rows.Close()

	out := make(map[string]FailsafeFlag, 3)
	for rows.Next() {
		var (
			flag string
			f    FailsafeFlag
		)
		if err := rows.Scan(&flag, &f.Tripped, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan failsafe flag: %w", err)
		}
		out[flag] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failsafe flags: %w", err)
	}
	return out, nil
}
