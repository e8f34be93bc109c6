package handlers

import (
	"errors"
	"net/http"
	"time"

	"greenhouse_control/internal/models"
	"greenhouse_control/internal/service"

	"github.com/gin-gonic/gin"
)

// timestampLayout is RFC3339 with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

const (
	msgInternal        = "Internal server error"
	msgNotFound        = "Not found"
	msgTooManyRequests = "Too many requests"
	msgBodyTooLarge    = "Request body too large"
	msgSensorsNotReady = "Sensor data unavailable"
	msgBusUnavailable  = "Control bus unavailable"
	msgFromInvalid     = "Invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	msgToInvalid       = "Invalid 'to' time; use RFC3339 or YYYY-MM-DD"
)

func timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error" example:"Unauthorized"`
	Timestamp string `json:"timestamp" example:"2025-06-01T10:00:00.000Z"`
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp"`
}

type StatusResponse struct {
	models.SystemStatus
	Timestamp string `json:"timestamp"`
}

type SensorsResponse struct {
	models.SensorReading
	Timestamp string `json:"timestamp"`
}

type ActuatorsResponse struct {
	Actuators []models.ActuatorState `json:"actuators"`
	Count     int                    `json:"count"`
	Timestamp string                 `json:"timestamp"`
}

type ActuatorResponse struct {
	models.ActuatorState
	Timestamp string `json:"timestamp"`
}

type PhaseResponse struct {
	Phase     models.CulturePhase   `json:"phase" example:"croissance"`
	Phases    []models.CulturePhase `json:"phases,omitempty"`
	Timestamp string                `json:"timestamp"`
}

type OverrideResponse struct {
	Target    string                `json:"target" example:"climat"`
	State     bool                  `json:"state" example:"true"`
	Failsafe  models.FailsafeStatus `json:"failsafe"`
	Timestamp string                `json:"timestamp"`
}

type LogsResponse struct {
	Count     int                   `json:"count"`
	Events    []models.ControlEvent `json:"events"`
	Timestamp string                `json:"timestamp"`
}

// ActuatorRequest documents the body of POST /api/actuators/{name}.
type ActuatorRequest struct {
	// Allowed: ON, OFF (case-sensitive)
	State string `json:"state" example:"ON"`
}

// PhaseRequest documents the body of POST /api/culture/phase.
type PhaseRequest struct {
	// Allowed: germination, croissance, floraison, recolte
	Phase string `json:"phase" example:"floraison"`
}

// OverrideRequest documents the body of POST /api/override.
type OverrideRequest struct {
	// Allowed: climat, arrosage (global when enabled)
	Target string `json:"target" example:"climat"`
	State  bool   `json:"state" example:"true"`
}

func abortWithError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: msg, Timestamp: timestamp()})
}

// fail maps a service error onto the error envelope. Unexpected errors are
// logged with their cause and reported to the client without detail.
func (h *Handler) fail(c *gin.Context, err error, logKey string, kv ...any) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		abortWithError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrUnauthorized):
		abortWithError(c, http.StatusUnauthorized, service.MsgUnauthorized)
	case errors.Is(err, service.ErrSensorsUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, msgSensorsNotReady)
	case errors.Is(err, service.ErrBusUnavailable):
		h.log.Warnw(logKey, append([]any{"err", err}, kv...)...)
		abortWithError(c, http.StatusServiceUnavailable, msgBusUnavailable)
	default:
		h.log.Errorw(logKey, append([]any{"err", err}, kv...)...)
		abortWithError(c, http.StatusInternalServerError, msgInternal)
	}
}
