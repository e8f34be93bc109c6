package service

import (
	"bytes"

	"greenhouse_control/internal/models"

	"github.com/goccy/go-json"
)

// ActuatorCommand is a validated POST /api/actuators/{name} request.
type ActuatorCommand struct {
	Name  string
	State string
}

// OverrideRequest is a validated POST /api/override request.
type OverrideRequest struct {
	Target string
	State  bool
}

// RequestValidator enforces the closed enumerations of each endpoint.
// It is immutable after construction and safe for concurrent use.
type RequestValidator struct {
	actuators   map[string]struct{}
	targets     map[string]struct{}
	allowGlobal bool
}

// NewRequestValidator builds a validator for the given actuator allow-list.
func NewRequestValidator(actuators []string, allowGlobal bool) *RequestValidator {
	v := &RequestValidator{
		actuators: make(map[string]struct{}, len(actuators)),
		targets: map[string]struct{}{
			models.FailsafeClimate:    {},
			models.FailsafeIrrigation: {},
		},
		allowGlobal: allowGlobal,
	}
	for _, n := range actuators {
		v.actuators[n] = struct{}{}
	}
	if allowGlobal {
		v.targets[models.FailsafeGlobal] = struct{}{}
	}
	return v
}

// ActuatorName rejects names outside the configured allow-list.
func (v *RequestValidator) ActuatorName(name string) error {
	if _, ok := v.actuators[name]; !ok {
		return invalid("name", MsgInvalidActuator)
	}
	return nil
}

// ActuatorCommand checks the path name before looking at the body.
func (v *RequestValidator) ActuatorCommand(name string, body []byte) (ActuatorCommand, error) {
	if err := v.ActuatorName(name); err != nil {
		return ActuatorCommand{}, err
	}
	fields, err := decodeFields(body)
	if err != nil {
		return ActuatorCommand{}, err
	}
	state, ok := stringField(fields, "state")
	if !ok || (state != models.StateOn && state != models.StateOff) {
		return ActuatorCommand{}, invalid("state", MsgInvalidState)
	}
	return ActuatorCommand{Name: name, State: state}, nil
}

func (v *RequestValidator) PhaseChange(body []byte) (models.CulturePhase, error) {
	fields, err := decodeFields(body)
	if err != nil {
		return "", err
	}
	s, ok := stringField(fields, "phase")
	phase := models.CulturePhase(s)
	if !ok || !phase.Valid() {
		return "", invalid("phase", MsgInvalidPhase)
	}
	return phase, nil
}

// Override requires a known target and a JSON boolean state; "true", 1 and
// similar truthy values are rejected.
func (v *RequestValidator) Override(body []byte) (OverrideRequest, error) {
	fields, err := decodeFields(body)
	if err != nil {
		return OverrideRequest{}, err
	}
	target, ok := stringField(fields, "target")
	if !ok {
		return OverrideRequest{}, invalid("target", MsgInvalidTarget)
	}
	if _, known := v.targets[target]; !known {
		if target == models.FailsafeGlobal && !v.allowGlobal {
			return OverrideRequest{}, invalid("target", MsgGlobalNotAllowed)
		}
		return OverrideRequest{}, invalid("target", MsgInvalidTarget)
	}
	state, ok := boolField(fields, "state")
	if !ok {
		return OverrideRequest{}, invalid("state", MsgOverrideStateNotBool)
	}
	return OverrideRequest{Target: target, State: state}, nil
}

// Targets lists the accepted override targets.
func (v *RequestValidator) Targets() []string {
	out := []string{models.FailsafeClimate, models.FailsafeIrrigation}
	if v.allowGlobal {
		out = append(out, models.FailsafeGlobal)
	}
	return out
}

// decodeFields parses a JSON object into raw members so each field's JSON type
// can be checked before its value is interpreted.
func decodeFields(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, invalid("", MsgInvalidJSON)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, invalid("", MsgInvalidJSON)
	}
	return fields, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolField(fields map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := fields[key]
	if !ok {
		return false, false
	}
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
