package models

// SystemStatus is the controller health summary served by /api/status.
type SystemStatus struct {
	Uptime       float64        `json:"uptime"` // seconds since start
	Failsafe     FailsafeStatus `json:"failsafe"`
	CulturePhase CulturePhase   `json:"culture_phase"`
	BusConnected bool           `json:"bus_connected"`
}
