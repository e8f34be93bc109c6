package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
)

func newTestRegistry() (*ActuatorRegistry, *fakeActuatorRepo, *fakeEventRepo, *fakeBus) {
	repo := &fakeActuatorRepo{}
	events := &fakeEventRepo{}
	bus := &fakeBus{connected: true}
	return NewActuatorRegistry(models.DefaultActuators, repo, events, bus, logger.Nop()), repo, events, bus
}

func TestActuatorRegistry_ListInConfiguredOrder(t *testing.T) {
	r, _, _, _ := newTestRegistry()
	list := r.List()
	if len(list) != len(models.DefaultActuators) {
		t.Fatalf("count = %d, want %d", len(list), len(models.DefaultActuators))
	}
	for i, a := range list {
		if a.Name != models.DefaultActuators[i] {
			t.Fatalf("position %d: got %s, want %s", i, a.Name, models.DefaultActuators[i])
		}
		if a.State != models.StateOff {
			t.Fatalf("%s should start OFF", a.Name)
		}
	}
}

func TestActuatorRegistry_SetState_RoundTrip(t *testing.T) {
	r, repo, events, bus := newTestRegistry()
	before := time.Now().UTC()

	got, err := r.SetState(context.Background(), models.ActuatorLamp, models.StateOn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != models.ActuatorLamp || got.State != models.StateOn {
		t.Fatalf("unexpected result %+v", got)
	}
	assertWithinTimeWindow(t, got.UpdatedAt, before, time.Now().UTC())

	var listed models.ActuatorState
	for _, a := range r.List() {
		if a.Name == models.ActuatorLamp {
			listed = a
		}
	}
	if listed.State != models.StateOn {
		t.Fatalf("List does not reflect the command: %+v", listed)
	}
	if !r.IsOn(models.ActuatorLamp) || r.IsOn(models.ActuatorPump) {
		t.Fatalf("IsOn mismatch")
	}
	if len(repo.saved) != 1 || len(bus.actuators) != 1 || bus.actuators[0] != "lampe=ON" {
		t.Fatalf("saved=%v published=%v", repo.saved, bus.actuators)
	}
	if events.count() != 1 || events.appended[0].Type != models.EventActuator {
		t.Fatalf("expected one ACTUATOR event")
	}
}

func TestActuatorRegistry_SetState_RepeatIsNoop(t *testing.T) {
	r, repo, events, bus := newTestRegistry()
	ctx := context.Background()

	first, err := r.SetState(ctx, models.ActuatorPump, models.StateOn)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.SetState(ctx, models.ActuatorPump, models.StateOn)
	if err != nil {
		t.Fatal(err)
	}
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("repeat command should not touch updated_at")
	}
	if len(repo.saved) != 1 || events.count() != 1 || bus.published() != 1 {
		t.Fatalf("repeat command should not write")
	}
}

func TestActuatorRegistry_SetState_FirstOffIsPublished(t *testing.T) {
	r, _, _, bus := newTestRegistry()
	got, err := r.SetState(context.Background(), models.ActuatorFan, models.StateOff)
	if err != nil {
		t.Fatal(err)
	}
	if got.UpdatedAt.IsZero() || bus.published() != 1 {
		t.Fatalf("an explicit OFF on a never-commanded actuator should be sent")
	}
}

func TestActuatorRegistry_SetState_Invalid(t *testing.T) {
	r, repo, _, bus := newTestRegistry()
	ctx := context.Background()

	if _, err := r.SetState(ctx, "invalid_actuator", models.StateOn); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := r.SetState(ctx, models.ActuatorLamp, "on"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.saved) != 0 || bus.published() != 0 {
		t.Fatalf("invalid commands must not write")
	}
}

func TestActuatorRegistry_SetState_BusDown(t *testing.T) {
	r, repo, events, bus := newTestRegistry()
	bus.err = errBusDown

	_, err := r.SetState(context.Background(), models.ActuatorHeater, models.StateOn)
	if !errors.Is(err, ErrBusUnavailable) {
		t.Fatalf("expected ErrBusUnavailable, got %v", err)
	}
	if r.IsOn(models.ActuatorHeater) {
		t.Fatalf("state changed despite bus failure")
	}
	if len(repo.saved) != 0 || events.count() != 0 {
		t.Fatalf("nothing should be written on bus failure")
	}
}

func TestActuatorRegistry_Restore(t *testing.T) {
	r, repo, _, _ := newTestRegistry()
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.rows = []models.ActuatorState{
		{Name: models.ActuatorPump, State: models.StateOn, UpdatedAt: at},
		{Name: "removed", State: models.StateOn, UpdatedAt: at},
		{Name: models.ActuatorLamp, State: "BROKEN", UpdatedAt: at},
	}
	if err := r.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !r.IsOn(models.ActuatorPump) || r.IsOn(models.ActuatorLamp) {
		t.Fatalf("unexpected restored states %+v", r.List())
	}
	if len(r.List()) != len(models.DefaultActuators) {
		t.Fatalf("unknown rows must not be added")
	}

	repo.listErr = errors.New("db down")
	if err := r.Restore(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestActuatorRegistry_ConcurrentCommands(t *testing.T) {
	r, _, _, _ := newTestRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, name := range models.DefaultActuators {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				if _, err := r.SetState(ctx, name, models.StateOn); err != nil {
					t.Errorf("%s: %v", name, err)
				}
				_ = r.List()
			}(name)
		}
	}
	wg.Wait()

	for _, a := range r.List() {
		if a.State != models.StateOn {
			t.Fatalf("%s ended %s", a.Name, a.State)
		}
	}
}

func assertWithinTimeWindow(t *testing.T, ts time.Time, start time.Time, end time.Time) {
	t.Helper()
	if ts.Before(start) || ts.After(end) {
		t.Fatalf("time %v not within window [%v, %v]", ts, start, end)
	}
}
