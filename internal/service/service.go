package service

import (
	"context"
	"time"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
	"greenhouse_control/internal/repository"
)

// ControlBus hands commands to the flow engine that drives the hardware.
// A non-nil error means the command was not delivered.
type ControlBus interface {
	PublishActuator(ctx context.Context, name, state string) error
	PublishPhase(ctx context.Context, phase models.CulturePhase) error
	PublishOverride(ctx context.Context, target string, state bool) error
	Connected() bool
}

// NopBus accepts every command without forwarding it. Used when MQTT is disabled.
type NopBus struct{}

func (NopBus) PublishActuator(context.Context, string, string) error { return nil }
func (NopBus) PublishPhase(context.Context, models.CulturePhase) error { return nil }
func (NopBus) PublishOverride(context.Context, string, bool) error { return nil }
func (NopBus) Connected() bool { return false }

// FailsafeNotifier announces failsafe flag changes to the outside world.
type FailsafeNotifier interface {
	NotifyFailsafe(ctx context.Context, n models.FailsafeNotice) error
}

// Authenticator gates every /api request.
type Authenticator interface {
	Authenticate(header string) error
}

// Validation turns raw request bodies into typed commands.
type Validation interface {
	ActuatorName(name string) error
	ActuatorCommand(name string, body []byte) (ActuatorCommand, error)
	PhaseChange(body []byte) (models.CulturePhase, error)
	Override(body []byte) (OverrideRequest, error)
}

// Failsafe holds the three independent failsafe flags.
type Failsafe interface {
	Status() models.FailsafeStatus
	ApplyOverride(ctx context.Context, target string, state bool) (models.FailsafeStatus, error)
	Trip(ctx context.Context, flag string, tripped bool, reason string) error
	ClearIf(ctx context.Context, flag, reason string) error
}

// Actuators is the registry of commandable outputs.
type Actuators interface {
	List() []models.ActuatorState
	SetState(ctx context.Context, name, state string) (models.ActuatorState, error)
	IsOn(name string) bool
	Names() []string
}

// Culture owns the current cultivation phase.
type Culture interface {
	Phase() models.CulturePhase
	SetPhase(ctx context.Context, p models.CulturePhase) (models.CulturePhase, error)
}

// Sensors holds the most recent reading reported by the field devices.
type Sensors interface {
	Latest() (models.SensorReading, error)
	RecordAir(r models.AirReading, at time.Time)
	RecordSoil(r models.SoilReading, at time.Time)
}

// Monitoring exposes the read-only controller summary.
type Monitoring interface {
	Snapshot(ctx context.Context) models.SystemStatus
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ControlEvent, error)
}

// Simulator produces synthetic sensor readings for bench use.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Options carries the configuration the services need.
type Options struct {
	Token            string
	AllowGlobal      bool
	Actuators        []string
	SensorStaleAfter time.Duration
	StartedAt        time.Time
}

type Service struct {
	Authenticator
	Validation
	Failsafe
	Actuators
	Culture
	Sensors
	Monitoring
	EventLog
	Simulator

	failsafe  *FailsafeStore
	actuators *ActuatorRegistry
	culture   *CultureService
}

// NewService wires the repository layer and the control bus into concrete services.
func NewService(repos *repository.Repository, bus ControlBus, opts Options, log *logger.Logger) *Service {
	if bus == nil {
		bus = NopBus{}
	}
	if len(opts.Actuators) == 0 {
		opts.Actuators = models.DefaultActuators
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}

	failsafe := NewFailsafeStore(repos.Failsafe, repos.Events, bus, log)
	actuators := NewActuatorRegistry(opts.Actuators, repos.Actuators, repos.Events, bus, log)
	culture := NewCultureService(repos.Settings, repos.Events, bus, log)
	sensors := NewSensorService(opts.SensorStaleAfter)

	return &Service{
		Authenticator: NewTokenAuthenticator(opts.Token),
		Validation:    NewRequestValidator(opts.Actuators, opts.AllowGlobal),
		Failsafe:      failsafe,
		Actuators:     actuators,
		Culture:       culture,
		Sensors:       sensors,
		Monitoring:    NewMonitoringService(opts.StartedAt, failsafe, culture, bus),
		EventLog:      NewEventLogService(repos.Events),
		Simulator:     NewSimulatorService(sensors, actuators, log),

		failsafe:  failsafe,
		actuators: actuators,
		culture:   culture,
	}
}

// SetFailsafeNotifier forwards every failsafe flag change to n.
func (s *Service) SetFailsafeNotifier(n FailsafeNotifier) {
	s.failsafe.SetNotifier(n)
}

// Restore reloads persisted failsafe flags, actuator states and the culture phase.
func (s *Service) Restore(ctx context.Context) error {
	if err := s.failsafe.Restore(ctx); err != nil {
		return err
	}
	if err := s.actuators.Restore(ctx); err != nil {
		return err
	}
	return s.culture.Restore(ctx)
}
