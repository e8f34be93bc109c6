package models

import "time"

// Control event types.
const (
	EventActuator = "ACTUATOR"
	EventPhase    = "PHASE"
	EventOverride = "OVERRIDE"
	EventFailsafe = "FAILSAFE"
)

// EventTypes lists every value accepted by the history type filter.
var EventTypes = []string{EventActuator, EventPhase, EventOverride, EventFailsafe}

// ControlEvent is a single audit log entry.
type ControlEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ACTUATOR | PHASE | OVERRIDE | FAILSAFE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
