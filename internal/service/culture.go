package service

import (
	"context"
	"fmt"
	"sync"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
)

type CultureService struct {
	mu    sync.Mutex
	phase models.CulturePhase

	repo   repository.SettingsRepo
	events repository.EventRepo
	bus    ControlBus
	log    *logger.Logger
}

func NewCultureService(repo repository.SettingsRepo, events repository.EventRepo, bus ControlBus, log *logger.Logger) *CultureService {
	return &CultureService{
		phase:  models.DefaultPhase,
		repo:   repo,
		events: events,
		bus:    bus,
		log:    log,
	}
}

func (s *CultureService) Phase() models.CulturePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// SetPhase publishes the new phase to the flow engine, then records it.
func (s *CultureService) SetPhase(ctx context.Context, p models.CulturePhase) (models.CulturePhase, error) {
	if !p.Valid() {
		return "", invalid("phase", MsgInvalidPhase)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p == s.phase {
		return s.phase, nil
	}
	if err := s.bus.PublishPhase(ctx, p); err != nil {
		s.log.Warnw("phase_publish_failed", "phase", p, "error", err)
		return s.phase, fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}
	if err := s.repo.Set(ctx, repository.SettingCulturePhase, string(p)); err != nil {
		s.log.Errorw("phase_persist_failed", "phase", p, "error", err)
	}

	prev := s.phase
	s.phase = p
	s.log.Infow("phase_changed", "from", prev, "to", p)
	recordEvent(ctx, s.events, s.log, models.EventPhase,
		fmt.Sprintf("Culture phase changed to %s", p),
		map[string]any{"from": string(prev), "to": string(p)})
	return p, nil
}

// Restore loads the persisted phase; an unknown stored value falls back to the default.
func (s *CultureService) Restore(ctx context.Context) error {
	v, ok, err := s.repo.Get(ctx, repository.SettingCulturePhase)
	if err != nil {
		return fmt.Errorf("restore culture phase: %w", err)
	}
	if !ok {
		return nil
	}
	p := models.CulturePhase(v)
	if !p.Valid() {
		s.log.Warnw("phase_restore_ignored", "value", v)
		return nil
	}
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
	return nil
}
