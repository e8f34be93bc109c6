package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/metrics"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
)

// ReasonManualOverride is recorded for flags set through the API.
const ReasonManualOverride = "manual override"

var failsafeFlags = []string{models.FailsafeGlobal, models.FailsafeClimate, models.FailsafeIrrigation}

// FailsafeStore holds the global, climat and arrosage flags. The flags are
// independent: setting global does not touch the subsystem flags.
type FailsafeStore struct {
	mu      sync.Mutex
	status  models.FailsafeStatus
	reasons map[string]string

	repo     repository.FailsafeRepo
	events   repository.EventRepo
	bus      ControlBus
	notifier FailsafeNotifier
	log      *logger.Logger
}

func NewFailsafeStore(repo repository.FailsafeRepo, events repository.EventRepo, bus ControlBus, log *logger.Logger) *FailsafeStore {
	for _, f := range failsafeFlags {
		metrics.SetFailsafe(f, false)
	}
	return &FailsafeStore{
		reasons: make(map[string]string, len(failsafeFlags)),
		repo:    repo,
		events:  events,
		bus:     bus,
		log:     log,
	}
}

// SetNotifier registers n to be told about every flag change. A nil n disables notices.
func (s *FailsafeStore) SetNotifier(n FailsafeNotifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

func (s *FailsafeStore) Status() models.FailsafeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// TripReason returns why flag was last set, or "" when it is clear or unknown.
func (s *FailsafeStore) TripReason(flag string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reasons[flag]
}

// ApplyOverride sets exactly one flag on operator request. The override is
// published first; if the bus refuses it nothing changes. Re-applying the
// current value is a no-op.
func (s *FailsafeStore) ApplyOverride(ctx context.Context, target string, state bool) (models.FailsafeStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.status.Flag(target)
	if !ok {
		return s.status, invalid("target", MsgInvalidTarget)
	}
	if cur == state {
		return s.status, nil
	}

	if err := s.bus.PublishOverride(ctx, target, state); err != nil {
		s.log.Warnw("override_publish_failed", "target", target, "state", state, "error", err)
		return s.status, fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}

	reason := ""
	if state {
		reason = ReasonManualOverride
	}
	s.set(ctx, target, state, reason)

	s.log.Infow("override_applied", "target", target, "state", state)
	recordEvent(ctx, s.events, s.log, models.EventOverride,
		fmt.Sprintf("Failsafe %s override set to %t", target, state),
		map[string]any{"target": target, "state": state})
	return s.status, nil
}

// Trip records a flag change reported by the flow engine or the bus watchdog.
// It is not published back to the bus.
func (s *FailsafeStore) Trip(ctx context.Context, flag string, tripped bool, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trip(ctx, flag, tripped, reason)
}

// ClearIf clears flag only when it was tripped for reason.
func (s *FailsafeStore) ClearIf(ctx context.Context, flag, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.status.Flag(flag); !ok || !cur || s.reasons[flag] != reason {
		return nil
	}
	return s.trip(ctx, flag, false, "")
}

func (s *FailsafeStore) trip(ctx context.Context, flag string, tripped bool, reason string) error {
	cur, ok := s.status.Flag(flag)
	if !ok {
		return fmt.Errorf("unknown failsafe flag %q", flag)
	}
	if cur == tripped {
		if tripped && reason != "" && s.reasons[flag] != reason {
			s.reasons[flag] = reason
			if err := s.repo.SaveFlag(ctx, flag, repository.FailsafeFlag{Tripped: true, Reason: reason}, time.Now().UTC()); err != nil {
				s.log.Errorw("failsafe_persist_failed", "flag", flag, "error", err)
			}
		}
		return nil
	}
	if !tripped {
		reason = ""
	}
	s.set(ctx, flag, tripped, reason)

	s.log.Warnw("failsafe_changed", "flag", flag, "tripped", tripped, "reason", reason)
	desc := fmt.Sprintf("Failsafe %s cleared", flag)
	if tripped {
		desc = fmt.Sprintf("Failsafe %s tripped: %s", flag, reason)
	}
	recordEvent(ctx, s.events, s.log, models.EventFailsafe, desc,
		map[string]any{"flag": flag, "tripped": tripped, "reason": reason})
	return nil
}

// Restore loads persisted flags together with their trip reasons, so a trip
// caused by a broker loss is still cleared by the next reconnect.
func (s *FailsafeStore) Restore(ctx context.Context) error {
	flags, err := s.repo.LoadFlags(ctx)
	if err != nil {
		return fmt.Errorf("restore failsafe flags: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, f := range flags {
		if _, ok := s.status.Flag(name); !ok {
			continue
		}
		s.status = s.status.With(name, f.Tripped)
		if f.Tripped && f.Reason != "" {
			s.reasons[name] = f.Reason
		} else {
			delete(s.reasons, name)
		}
		metrics.SetFailsafe(name, f.Tripped)
	}
	return nil
}

// set must be called with mu held. Persistence and notification failures are
// logged: the in-memory flag follows what was actually commanded.
func (s *FailsafeStore) set(ctx context.Context, flag string, v bool, reason string) {
	now := time.Now().UTC()
	if err := s.repo.SaveFlag(ctx, flag, repository.FailsafeFlag{Tripped: v, Reason: reason}, now); err != nil {
		s.log.Errorw("failsafe_persist_failed", "flag", flag, "error", err)
	}
	s.status = s.status.With(flag, v)
	if reason == "" {
		delete(s.reasons, flag)
	} else {
		s.reasons[flag] = reason
	}
	metrics.SetFailsafe(flag, v)

	if s.notifier == nil {
		return
	}
	notice := models.FailsafeNotice{
		Flag:      flag,
		Tripped:   v,
		Reason:    reason,
		Failsafe:  s.status,
		ChangedAt: now,
	}
	if err := s.notifier.NotifyFailsafe(ctx, notice); err != nil {
		s.log.Warnw("failsafe_notify_failed", "flag", flag, "tripped", v, "error", err)
	}
}
