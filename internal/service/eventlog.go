package service

import (
	"context"
	"strings"
	"time"

	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
)

// LogFilter selects control events. Zero bounds and an empty Type match everything.
type LogFilter struct {
	From time.Time // inclusive
	To   time.Time // inclusive
	Type string    // one of models.EventTypes, any case
}

// EventLogService is the read side of the control history written by the
// actuator, culture and failsafe stores.
type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange error = &ValidationError{Field: "from", Message: MsgInvalidTimeRange}
	errInvalidEventType error = &ValidationError{Field: "type", Message: MsgInvalidEventType}
)

// utc converts t to UTC; the zero time stays zero so it still means "unbounded".
func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// canonicalEventType maps " override " to "OVERRIDE". It reports false for
// anything that is not a known event type.
func canonicalEventType(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", true
	}
	for _, t := range models.EventTypes {
		if s == t {
			return s, true
		}
	}
	return "", false
}

// normalize returns the filter in the form the repository expects.
func (f LogFilter) normalize() (LogFilter, error) {
	out := LogFilter{From: utc(f.From), To: utc(f.To)}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return LogFilter{}, errInvalidTimeRange
	}
	typ, ok := canonicalEventType(f.Type)
	if !ok {
		return LogFilter{}, errInvalidEventType
	}
	out.Type = typ
	return out, nil
}

// List returns the events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ControlEvent, error) {
	n, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, n.From, n.To, n.Type)
}
