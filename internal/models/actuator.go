package models

import "time"

// Actuator output levels. Matching is case-sensitive.
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// Known actuators, in the order they are reported.
const (
	ActuatorLamp       = "lampe"
	ActuatorPump       = "pompe"
	ActuatorFan        = "ventilateur"
	ActuatorHeater     = "chauffage"
	ActuatorHumidifier = "humidificateur"
)

// DefaultActuators is the allow-list used when the configuration does not override it.
var DefaultActuators = []string{
	ActuatorLamp,
	ActuatorPump,
	ActuatorFan,
	ActuatorHeater,
	ActuatorHumidifier,
}

// ActuatorState is the last commanded output of a single actuator.
type ActuatorState struct {
	Name      string    `json:"name"`
	State     string    `json:"state"`              // ON | OFF
	UpdatedAt time.Time `json:"updated_at,omitzero"` // zero until first command
}

// IsOn reports whether the actuator is switched on.
func (a ActuatorState) IsOn() bool { return a.State == StateOn }
