package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"greenhouse_control/internal/models"
)

type ActuatorSQLite struct {
	db *sql.DB
}

func NewActuatorSQLite(db *sql.DB) *ActuatorSQLite {
	return &ActuatorSQLite{db: db}
}

var _ ActuatorRepo = (*ActuatorSQLite)(nil)

const (
	upsertActuatorSQL = `
		INSERT INTO actuator_state (name, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			state=excluded.state,
			updated_at=excluded.updated_at
	`

	selectActuatorsSQL = `SELECT name, state, updated_at FROM actuator_state ORDER BY name ASC`
)

// Save upserts the actuator row. A zero UpdatedAt is replaced by now (UTC).
func (r *ActuatorSQLite) Save(ctx context.Context, a models.ActuatorState) error {
	ts := a.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}
	if _, err := r.db.ExecContext(ctx, upsertActuatorSQL, a.Name, a.State, ts); err != nil {
		return fmt.Errorf("save actuator %q: %w", a.Name, err)
	}
	return nil
}

// List returns every persisted actuator row. Ordering for the API is owned by the registry.
func (r *ActuatorSQLite) List(ctx context.Context) ([]models.ActuatorState, error) {
	rows, err := r.db.QueryContext(ctx, selectActuatorsSQL)
	if err != nil {
		return nil, fmt.Errorf("select actuators: %w", err)
	}
	defer rows.Close()

	var out []models.ActuatorState
	for rows.Next() {
		var a models.ActuatorState
		if err := rows.Scan(&a.Name, &a.State, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan actuator: %w", err)
		}
		a.UpdatedAt = a.UpdatedAt.UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actuators: %w", err)
	}
	return out, nil
}
