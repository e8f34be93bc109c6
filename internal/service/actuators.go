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

// ActuatorRegistry tracks the last commanded state of each known actuator.
// Writers on the same actuator are serialized; different actuators proceed
// independently.
type ActuatorRegistry struct {
	names []string

	mu     sync.RWMutex
	states map[string]models.ActuatorState
	locks  map[string]*sync.Mutex

	repo   repository.ActuatorRepo
	events repository.EventRepo
	bus    ControlBus
	log    *logger.Logger
}

// NewActuatorRegistry starts every actuator OFF.
func NewActuatorRegistry(names []string, repo repository.ActuatorRepo, events repository.EventRepo, bus ControlBus, log *logger.Logger) *ActuatorRegistry {
	r := &ActuatorRegistry{
		names:  append([]string(nil), names...),
		states: make(map[string]models.ActuatorState, len(names)),
		locks:  make(map[string]*sync.Mutex, len(names)),
		repo:   repo,
		events: events,
		bus:    bus,
		log:    log,
	}
	for _, n := range r.names {
		r.states[n] = models.ActuatorState{Name: n, State: models.StateOff}
		r.locks[n] = &sync.Mutex{}
	}
	return r
}

// Names returns the allow-list in configured order.
func (r *ActuatorRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// List returns a snapshot of every actuator in configured order.
func (r *ActuatorRegistry) List() []models.ActuatorState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ActuatorState, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.states[n])
	}
	return out
}

func (r *ActuatorRegistry) Get(name string) (models.ActuatorState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.states[name]
	return st, ok
}

func (r *ActuatorRegistry) IsOn(name string) bool {
	st, ok := r.Get(name)
	return ok && st.IsOn()
}

// SetState commands name to state. The command is published before anything
// changes locally; a bus failure returns ErrBusUnavailable and leaves the
// registry untouched. Repeating the current state is a no-op once the
// actuator has been commanded at least once.
func (r *ActuatorRegistry) SetState(ctx context.Context, name, state string) (models.ActuatorState, error) {
	lock, ok := r.locks[name]
	if !ok {
		return models.ActuatorState{}, invalid("name", MsgInvalidActuator)
	}
	if state != models.StateOn && state != models.StateOff {
		return models.ActuatorState{}, invalid("state", MsgInvalidState)
	}

	lock.Lock()
	defer lock.Unlock()

	cur, _ := r.Get(name)
	if cur.State == state && !cur.UpdatedAt.IsZero() {
		return cur, nil
	}

	if err := r.bus.PublishActuator(ctx, name, state); err != nil {
		r.log.Warnw("actuator_publish_failed", "actuator", name, "state", state, "error", err)
		return cur, fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	}

	next := models.ActuatorState{Name: name, State: state, UpdatedAt: time.Now().UTC()}
	if err := r.repo.Save(ctx, next); err != nil {
		r.log.Errorw("actuator_persist_failed", "actuator", name, "error", err)
	}

	r.mu.Lock()
	r.states[name] = next
	r.mu.Unlock()

	metrics.ActuatorCommand(name, state)
	r.log.Infow("actuator_set", "actuator", name, "from", cur.State, "to", state)
	recordEvent(ctx, r.events, r.log, models.EventActuator,
		fmt.Sprintf("Actuator %s set to %s", name, state),
		map[string]any{"name": name, "from": cur.State, "to": state})
	return next, nil
}

// Restore loads persisted states. Rows for actuators no longer configured are ignored.
func (r *ActuatorRegistry) Restore(ctx context.Context) error {
	saved, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("restore actuators: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range saved {
		if _, ok := r.states[st.Name]; !ok {
			continue
		}
		if st.State != models.StateOn && st.State != models.StateOff {
			continue
		}
		st.UpdatedAt = st.UpdatedAt.UTC()
		r.states[st.Name] = st
	}
	return nil
}
