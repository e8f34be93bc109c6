package mqtt

import "strings"

// DefaultTopicPrefix is the root of every greenhouse topic.
const DefaultTopicPrefix = "serre"

// Topics builds the topic names shared with the flow engine.
//
//	serre/cmd/actuators/<name>   out  {"state":"ON"}
//	serre/cmd/phase              out  {"phase":"floraison"}          retained
//	serre/cmd/override/<target>  out  {"state":true}                 retained
//	serre/api/status             out  {"status":"online"}            retained, LWT
//	serre/sensors/air            in   {"temperature":21.5,"humidity":63}
//	serre/sensors/soil           in   {"humidity":40}
//	serre/failsafe/<target>      in   {"tripped":true,"reason":"..."}
//	serre/notify/failsafe        out  {"flag":"global","tripped":true,...} retained
type Topics struct {
	Prefix string
}

func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) ActuatorCommand(name string) string {
	return t.Prefix + "/cmd/actuators/" + name
}

func (t Topics) PhaseCommand() string {
	return t.Prefix + "/cmd/phase"
}

func (t Topics) OverrideCommand(target string) string {
	return t.Prefix + "/cmd/override/" + target
}

func (t Topics) APIStatus() string {
	return t.Prefix + "/api/status"
}

func (t Topics) AirSensor() string {
	return t.Prefix + "/sensors/air"
}

func (t Topics) SoilSensor() string {
	return t.Prefix + "/sensors/soil"
}

func (t Topics) FailsafeNotice() string {
	return t.Prefix + "/notify/failsafe"
}

// AllFailsafe matches every failsafe report.
func (t Topics) AllFailsafe() string {
	return t.Prefix + "/failsafe/+"
}

// ParseFailsafe extracts the target from a failsafe report topic.
func (t Topics) ParseFailsafe(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.Prefix+"/failsafe/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
