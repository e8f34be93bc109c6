package service

import (
	"time"

	"greenhouse_control/internal/metrics"
	"greenhouse_control/internal/models"

	"github.com/patrickmn/go-cache"
)

const (
	sensorKeyAir  = "air"
	sensorKeySoil = "soil"

	defaultStaleAfter = 2 * time.Minute
)

type airSample struct {
	reading models.AirReading
	at      time.Time
}

type soilSample struct {
	reading models.SoilReading
	at      time.Time
}

// SensorService keeps the latest air and soil samples. Each sample expires
// staleAfter after it was measured, after which Latest reports
// ErrSensorsUnavailable instead of serving old values.
type SensorService struct {
	cache      *cache.Cache
	staleAfter time.Duration
}

func NewSensorService(staleAfter time.Duration) *SensorService {
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &SensorService{
		cache:      cache.New(staleAfter, 2*staleAfter),
		staleAfter: staleAfter,
	}
}

func (s *SensorService) RecordAir(r models.AirReading, at time.Time) {
	if ttl, ok := s.ttl(at); ok {
		s.cache.Set(sensorKeyAir, airSample{reading: r, at: at.UTC()}, ttl)
	}
	metrics.SetSensor("air_temperature", r.Temperature)
	metrics.SetSensor("air_humidity", r.Humidity)
}

func (s *SensorService) RecordSoil(r models.SoilReading, at time.Time) {
	if ttl, ok := s.ttl(at); ok {
		s.cache.Set(sensorKeySoil, soilSample{reading: r, at: at.UTC()}, ttl)
	}
	metrics.SetSensor("soil_humidity", r.Humidity)
}

// Latest combines the air and soil samples. MeasuredAt is the older of the two.
func (s *SensorService) Latest() (models.SensorReading, error) {
	a, okA := s.cache.Get(sensorKeyAir)
	b, okB := s.cache.Get(sensorKeySoil)
	if !okA || !okB {
		return models.SensorReading{}, ErrSensorsUnavailable
	}
	air := a.(airSample)
	soil := b.(soilSample)

	measured := air.at
	if soil.at.Before(measured) {
		measured = soil.at
	}
	return models.SensorReading{
		Air:        air.reading,
		Soil:       soil.reading,
		MeasuredAt: measured,
	}, nil
}

// ttl returns how long a sample measured at at stays fresh. Samples from the
// future are clamped to now.
func (s *SensorService) ttl(at time.Time) (time.Duration, bool) {
	age := time.Since(at)
	if age < 0 {
		age = 0
	}
	ttl := s.staleAfter - age
	return ttl, ttl > 0
}
