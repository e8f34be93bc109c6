package service

import (
	"context"
	"time"

	"greenhouse_control/internal/models"
)

type MonitoringService struct {
	startedAt time.Time
	failsafe  interface{ Status() models.FailsafeStatus }
	culture   interface{ Phase() models.CulturePhase }
	bus       ControlBus
}

func NewMonitoringService(startedAt time.Time, failsafe *FailsafeStore, culture *CultureService, bus ControlBus) *MonitoringService {
	return &MonitoringService{startedAt: startedAt, failsafe: failsafe, culture: culture, bus: bus}
}

// Snapshot never fails: every field is held in memory.
func (s *MonitoringService) Snapshot(_ context.Context) models.SystemStatus {
	return models.SystemStatus{
		Uptime:       time.Since(s.startedAt).Seconds(),
		Failsafe:     s.failsafe.Status(),
		CulturePhase: s.culture.Phase(),
		BusConnected: s.bus.Connected(),
	}
}
