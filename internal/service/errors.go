package service

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers.
var (
	// ErrUnauthorized is returned for a missing, malformed or mismatched bearer token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSensorsUnavailable is returned when no fresh sensor reading is held.
	ErrSensorsUnavailable = errors.New("sensor readings unavailable")

	// ErrBusUnavailable is returned when a command could not be handed to the flow engine.
	ErrBusUnavailable = errors.New("control bus unavailable")
)

// Client-facing validation messages.
const (
	MsgUnauthorized         = "Unauthorized"
	MsgInvalidJSON          = "Invalid JSON body"
	MsgInvalidActuator      = "Invalid actuator name"
	MsgInvalidState         = `Invalid state: must be "ON" or "OFF"`
	MsgInvalidPhase         = "Invalid culture phase"
	MsgInvalidTarget        = "Invalid override target"
	MsgGlobalNotAllowed     = "Global override not allowed"
	MsgOverrideStateNotBool = "Override state must be a boolean"
	MsgInvalidEventType     = "Invalid event type"
	MsgInvalidTimeRange     = "Invalid time range: from must be <= to"
)

// ValidationError reports a request that was rejected before any state changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
