package repository

import (
	"context"
	"database/sql"
	"time"

	"greenhouse_control/internal/models"
)

// ActuatorRepo persists the last commanded state of each actuator.
type ActuatorRepo interface {
	Save(ctx context.Context, a models.ActuatorState) error
	List(ctx context.Context) ([]models.ActuatorState, error)
}

// FailsafeFlag is a persisted failsafe flag and the reason it was tripped.
type FailsafeFlag struct {
	Tripped bool
	Reason  string
}

// FailsafeRepo persists failsafe flags so a restart does not silently re-arm automation.
type FailsafeRepo interface {
	SaveFlag(ctx context.Context, flag string, f FailsafeFlag, at time.Time) error
	LoadFlags(ctx context.Context) (map[string]FailsafeFlag, error)
}

// SettingsRepo is a small key/value store for controller settings (culture phase).
type SettingsRepo interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ControlEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ControlEvent, error)
}

type Repository struct {
	Actuators ActuatorRepo
	Failsafe  FailsafeRepo
	Settings  SettingsRepo
	Events    EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Actuators: NewActuatorSQLite(db),
		Failsafe:  NewFailsafeSQLite(db),
		Settings:  NewSettingsSQLite(db),
		Events:    NewEventSQLite(db),
	}
}
