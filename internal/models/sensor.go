package models

import "time"

// AirReading holds ambient conditions.
type AirReading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %RH
}

// SoilReading holds substrate conditions.
type SoilReading struct {
	Humidity float64 `json:"humidity"` // %
}

// SensorReading is a point-in-time snapshot of all greenhouse sensors.
type SensorReading struct {
	Air        AirReading  `json:"air"`
	Soil       SoilReading `json:"soil"`
	MeasuredAt time.Time   `json:"measured_at"`
}
