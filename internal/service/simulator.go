package service

import (
	"context"
	"time"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientC            = 18.0 // outside air °C
	AmbientHumidityPct  = 55.0 // outside air %RH
	InitialSoilPct      = 45.0 // substrate moisture at start
	HeaterCPerSec       = 0.05 // °C per second when chauffage is ON
	LampCPerSec         = 0.01 // °C per second when lampe is ON
	FanCPerSec          = 0.04 // °C per second pulled toward ambient by ventilateur
	PassiveCPerSec      = 0.01 // °C per second drift toward ambient
	HumidifierPctPerSec = 0.20 // %RH per second when humidificateur is ON
	FanDryPctPerSec     = 0.10 // %RH per second pulled toward ambient by ventilateur
	PumpSoilPctPerSec   = 0.50 // % per second when pompe is ON
	SoilDryPctPerSec    = 0.01 // % per second evaporation
)

// SimulatorService feeds synthetic readings into the sensor snapshot. The
// readings respond to the commanded actuator states so the API can be
// exercised without field devices.
type SimulatorService struct {
	sensors   Sensors
	actuators interface{ IsOn(name string) bool }
	log       *logger.Logger

	air  models.AirReading
	soil models.SoilReading
	last time.Time
}

// NewSimulatorService returns a simulator starting from ambient conditions.
func NewSimulatorService(sensors Sensors, actuators interface{ IsOn(name string) bool }, log *logger.Logger) *SimulatorService {
	return &SimulatorService{
		sensors:   sensors,
		actuators: actuators,
		log:       log,
		air:       models.AirReading{Temperature: AmbientC, Humidity: AmbientHumidityPct},
		soil:      models.SoilReading{Humidity: InitialSoilPct},
	}
}

// Run ticks at the given interval until ctx is canceled. It must not be
// started more than once.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	s.log.Infow("simulator_started", "tick", tick.String())
	s.step(time.Now())

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Infow("simulator_stopped")
			return
		case now := <-t.C:
			s.step(now)
		}
	}
}

// step advances the model to now and publishes a reading.
func (s *SimulatorService) step(now time.Time) {
	if !s.last.IsZero() {
		if elapsed := now.Sub(s.last).Seconds(); elapsed > 0 {
			s.advance(elapsed)
		}
	}
	s.last = now
	s.sensors.RecordAir(s.air, now)
	s.sensors.RecordSoil(s.soil, now)
}

func (s *SimulatorService) advance(elapsed float64) {
	on := s.actuators.IsOn

	temp := s.air.Temperature
	if on(models.ActuatorHeater) {
		temp += HeaterCPerSec * elapsed
	}
	if on(models.ActuatorLamp) {
		temp += LampCPerSec * elapsed
	}
	rate := PassiveCPerSec
	if on(models.ActuatorFan) {
		rate += FanCPerSec
	}
	temp = towards(temp, AmbientC, rate*elapsed)

	hum := s.air.Humidity
	if on(models.ActuatorHumidifier) {
		hum += HumidifierPctPerSec * elapsed
	}
	if on(models.ActuatorFan) {
		hum = towards(hum, AmbientHumidityPct, FanDryPctPerSec*elapsed)
	}

	soil := s.soil.Humidity - SoilDryPctPerSec*elapsed
	if on(models.ActuatorPump) {
		soil += PumpSoilPctPerSec * elapsed
	}

	s.air = models.AirReading{Temperature: temp, Humidity: clamp(hum, 0, 100)}
	s.soil = models.SoilReading{Humidity: clamp(soil, 0, 100)}
}

// helpers

// towards moves v toward target by at most step without overshooting.
func towards(v, target, step float64) float64 {
	switch {
	case v > target:
		return maxFloat(v-step, target)
	case v < target:
		return minFloat(v+step, target)
	default:
		return v
	}
}

func clamp(v, lo, hi float64) float64 {
	return minFloat(maxFloat(v, lo), hi)
}

func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
