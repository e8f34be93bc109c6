package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/metrics"
	"greenhouse_control/internal/models"
)

// ReasonBrokerLost is the trip reason recorded when the broker connection drops.
const ReasonBrokerLost = "broker connection lost"

// Transport is the subset of *Client the bridge needs.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
	IsConnected() bool
}

// FailsafeSink receives failsafe reports from the flow engine.
type FailsafeSink interface {
	Trip(ctx context.Context, flag string, tripped bool, reason string) error
	ClearIf(ctx context.Context, flag, reason string) error
}

// SensorSink receives sensor readings.
type SensorSink interface {
	RecordAir(r models.AirReading, at time.Time)
	RecordSoil(r models.SoilReading, at time.Time)
}

// Bridge translates control commands into MQTT messages and inbound messages
// into service calls. It implements service.ControlBus.
type Bridge struct {
	transport Transport
	topics    Topics
	qos       byte
	log       *logger.Logger

	failsafe FailsafeSink
}

func NewBridge(t Transport, topics Topics, qos byte, log *logger.Logger) *Bridge {
	return &Bridge{transport: t, topics: topics, qos: qos, log: log}
}

type statePayload struct {
	State string `json:"state"`
}

type phasePayload struct {
	Phase models.CulturePhase `json:"phase"`
}

type overridePayload struct {
	State bool `json:"state"`
}

func (b *Bridge) PublishActuator(ctx context.Context, name, state string) error {
	return b.publish(ctx, "actuator", b.topics.ActuatorCommand(name), statePayload{State: state}, false)
}

// PublishPhase is retained so a restarted flow engine picks up the current phase.
func (b *Bridge) PublishPhase(ctx context.Context, phase models.CulturePhase) error {
	return b.publish(ctx, "phase", b.topics.PhaseCommand(), phasePayload{Phase: phase}, true)
}

// PublishOverride is retained for the same reason as PublishPhase.
func (b *Bridge) PublishOverride(ctx context.Context, target string, state bool) error {
	return b.publish(ctx, "override", b.topics.OverrideCommand(target), overridePayload{State: state}, true)
}

// NotifyFailsafe publishes a retained notice so dashboards and alerting see
// the latest flag change even when they subscribe late.
func (b *Bridge) NotifyFailsafe(ctx context.Context, n models.FailsafeNotice) error {
	return b.publish(ctx, "failsafe_notice", b.topics.FailsafeNotice(), n, true)
}

func (b *Bridge) Connected() bool {
	return b.transport.IsConnected()
}

func (b *Bridge) publish(ctx context.Context, kind, topic string, v any, retained bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s command: %w", kind, err)
	}
	if err := b.transport.Publish(topic, payload, b.qos, retained); err != nil {
		return err
	}
	metrics.MQTTMessage("out", kind)
	return nil
}

// Attach subscribes to sensor and failsafe topics and routes them to the sinks.
func (b *Bridge) Attach(failsafe FailsafeSink, sensors SensorSink) error {
	b.failsafe = failsafe

	subs := []struct {
		topic   string
		handler MessageHandler
	}{
		{b.topics.AirSensor(), func(_ string, p []byte) error { return b.handleAir(sensors, p) }},
		{b.topics.SoilSensor(), func(_ string, p []byte) error { return b.handleSoil(sensors, p) }},
		{b.topics.AllFailsafe(), b.handleFailsafe},
	}
	for _, s := range subs {
		if err := b.transport.Subscribe(s.topic, b.qos, s.handler); err != nil {
			return fmt.Errorf("subscribe %s: %w", s.topic, err)
		}
	}
	return nil
}

// HandleConnectionLost trips the global failsafe: without the broker, no
// command can reach the flow engine.
func (b *Bridge) HandleConnectionLost(err error) {
	metrics.SetMQTTConnected(false)
	b.log.Warnw("mqtt_connection_lost", "error", err)
	if b.failsafe == nil {
		return
	}
	if terr := b.failsafe.Trip(context.Background(), models.FailsafeGlobal, true, ReasonBrokerLost); terr != nil {
		b.log.Errorw("failsafe_trip_failed", "error", terr)
	}
}

// HandleConnect clears a global trip caused by a previous connection loss.
func (b *Bridge) HandleConnect() {
	metrics.SetMQTTConnected(true)
	b.log.Infow("mqtt_connected")
	if b.failsafe == nil {
		return
	}
	if err := b.failsafe.ClearIf(context.Background(), models.FailsafeGlobal, ReasonBrokerLost); err != nil {
		b.log.Errorw("failsafe_clear_failed", "error", err)
	}
}

type airMessage struct {
	Temperature *float64   `json:"temperature"`
	Humidity    *float64   `json:"humidity"`
	MeasuredAt  *time.Time `json:"measured_at"`
}

type soilMessage struct {
	Humidity   *float64   `json:"humidity"`
	MeasuredAt *time.Time `json:"measured_at"`
}

type failsafeMessage struct {
	Tripped *bool  `json:"tripped"`
	Reason  string `json:"reason"`
}

func (b *Bridge) handleAir(sink SensorSink, payload []byte) error {
	var m airMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return fmt.Errorf("%w: air: %v", ErrInvalidPayload, err)
	}
	if m.Temperature == nil || m.Humidity == nil {
		return fmt.Errorf("%w: air: temperature and humidity are required", ErrInvalidPayload)
	}
	metrics.MQTTMessage("in", "air")
	sink.RecordAir(models.AirReading{Temperature: *m.Temperature, Humidity: *m.Humidity}, measuredAt(m.MeasuredAt))
	return nil
}

func (b *Bridge) handleSoil(sink SensorSink, payload []byte) error {
	var m soilMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return fmt.Errorf("%w: soil: %v", ErrInvalidPayload, err)
	}
	if m.Humidity == nil {
		return fmt.Errorf("%w: soil: humidity is required", ErrInvalidPayload)
	}
	metrics.MQTTMessage("in", "soil")
	sink.RecordSoil(models.SoilReading{Humidity: *m.Humidity}, measuredAt(m.MeasuredAt))
	return nil
}

func (b *Bridge) handleFailsafe(topic string, payload []byte) error {
	target, ok := b.topics.ParseFailsafe(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidPayload, topic)
	}
	var m failsafeMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return fmt.Errorf("%w: failsafe: %v", ErrInvalidPayload, err)
	}
	if m.Tripped == nil {
		return fmt.Errorf("%w: failsafe: tripped is required", ErrInvalidPayload)
	}
	metrics.MQTTMessage("in", "failsafe")
	if b.failsafe == nil {
		return nil
	}
	return b.failsafe.Trip(context.Background(), target, *m.Tripped, m.Reason)
}

func measuredAt(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
