package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
)

var errBusDown = errors.New("broker unreachable")

// fakeBus records published commands. When err is set every publish fails.
type fakeBus struct {
	mu        sync.Mutex
	err       error
	connected bool
	actuators []string
	phases    []models.CulturePhase
	overrides []string
}

func (b *fakeBus) PublishActuator(_ context.Context, name, state string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.actuators = append(b.actuators, name+"="+state)
	return nil
}

func (b *fakeBus) PublishPhase(_ context.Context, p models.CulturePhase) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.phases = append(b.phases, p)
	return nil
}

func (b *fakeBus) PublishOverride(_ context.Context, target string, state bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	if state {
		b.overrides = append(b.overrides, target+"=true")
	} else {
		b.overrides = append(b.overrides, target+"=false")
	}
	return nil
}

func (b *fakeBus) Connected() bool { return b.connected }

func (b *fakeBus) published() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.actuators) + len(b.phases) + len(b.overrides)
}

type fakeFailsafeRepo struct {
	mu      sync.Mutex
	flags   map[string]repository.FailsafeFlag
	saves   int
	saveErr error
	loadErr error
}

func (f *fakeFailsafeRepo) SaveFlag(_ context.Context, flag string, fl repository.FailsafeFlag, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.flags == nil {
		f.flags = map[string]repository.FailsafeFlag{}
	}
	f.flags[flag] = fl
	return nil
}

func (f *fakeFailsafeRepo) LoadFlags(context.Context) (map[string]repository.FailsafeFlag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[string]repository.FailsafeFlag, len(f.flags))
	for k, v := range f.flags {
		out[k] = v
	}
	return out, nil
}

// fakeNotifier collects failsafe notices.
type fakeNotifier struct {
	mu      sync.Mutex
	err     error
	notices []models.FailsafeNotice
}

func (n *fakeNotifier) NotifyFailsafe(_ context.Context, notice models.FailsafeNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *fakeNotifier) sent() []models.FailsafeNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.FailsafeNotice(nil), n.notices...)
}

type fakeActuatorRepo struct {
	mu      sync.Mutex
	saved   []models.ActuatorState
	rows    []models.ActuatorState
	saveErr error
	listErr error
}

func (f *fakeActuatorRepo) Save(_ context.Context, a models.ActuatorState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, a)
	return f.saveErr
}

func (f *fakeActuatorRepo) List(context.Context) ([]models.ActuatorState, error) {
	return f.rows, f.listErr
}

type fakeSettingsRepo struct {
	values map[string]string
	getErr error
	setErr error
}

func (f *fakeSettingsRepo) Set(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeSettingsRepo) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

// fakeEventRepo records appended events. List answers with events when set,
// otherwise it filters what was appended the way the SQL repository does.
type fakeEventRepo struct {
	gotCtx  context.Context
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	events []models.ControlEvent
	err    error

	calls int

	mu        sync.Mutex
	appended  []models.ControlEvent
	appendErr error
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.ControlEvent, error) {
	f.calls++
	f.gotCtx = ctx
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	if f.err != nil || f.events != nil {
		return f.events, f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ControlEvent
	for _, e := range f.appended {
		switch {
		case !from.IsZero() && e.OccurredAt.Before(from):
		case !to.IsZero() && e.OccurredAt.After(to):
		case typ != "" && e.Type != typ:
		default:
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ControlEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended)
}
