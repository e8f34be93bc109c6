package models

import "time"

// Failsafe flag identifiers, as used on the wire.
const (
	FailsafeGlobal     = "global"
	FailsafeClimate    = "climat"
	FailsafeIrrigation = "arrosage"
)

// FailsafeStatus reports which subsystems are withheld from automatic control.
// All three keys are always serialized.
type FailsafeStatus struct {
	Global     bool `json:"global"`
	Climate    bool `json:"climat"`
	Irrigation bool `json:"arrosage"`
}

// Flag returns the value of the named flag and whether the name is known.
func (s FailsafeStatus) Flag(name string) (bool, bool) {
	switch name {
	case FailsafeGlobal:
		return s.Global, true
	case FailsafeClimate:
		return s.Climate, true
	case FailsafeIrrigation:
		return s.Irrigation, true
	default:
		return false, false
	}
}

// With returns a copy of s with the named flag set to v. Unknown names leave s unchanged.
func (s FailsafeStatus) With(name string, v bool) FailsafeStatus {
	switch name {
	case FailsafeGlobal:
		s.Global = v
	case FailsafeClimate:
		s.Climate = v
	case FailsafeIrrigation:
		s.Irrigation = v
	}
	return s
}

// FailsafeNotice announces a single flag change together with the resulting status.
type FailsafeNotice struct {
	Flag      string         `json:"flag"`
	Tripped   bool           `json:"tripped"`
	Reason    string         `json:"reason,omitempty"`
	Failsafe  FailsafeStatus `json:"failsafe"`
	ChangedAt time.Time      `json:"changed_at"`
}
