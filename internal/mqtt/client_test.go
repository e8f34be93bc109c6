package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenhouse_control/internal/config"
)

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestClient_PublishValidation(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)

	assert.ErrorIs(t, c.Publish("", []byte("x"), 1, false), ErrInvalidTopic)
	assert.ErrorIs(t, c.Publish("serre/x", []byte("x"), 3, false), ErrInvalidQoS)
	assert.ErrorIs(t, c.Publish("serre/x", make([]byte, maxPayloadSize+1), 1, false), ErrPublishFailed)
	assert.ErrorIs(t, c.Publish("serre/x", []byte("x"), 1, false), ErrNotConnected)
}

func TestClient_SubscribeValidation(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)
	noop := func(string, []byte) error { return nil }

	assert.ErrorIs(t, c.Subscribe("", 1, noop), ErrInvalidTopic)
	assert.ErrorIs(t, c.Subscribe("serre/x", 5, noop), ErrInvalidQoS)
	assert.ErrorIs(t, c.Subscribe("serre/x", 1, nil), ErrSubscribeFailed)
	assert.Equal(t, 0, c.SubscriptionCount())
}

func TestClient_SubscribeBeforeConnect(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)
	noop := func(string, []byte) error { return nil }

	require.NoError(t, c.Subscribe("serre/sensors/air", 1, noop))
	require.NoError(t, c.Subscribe("serre/failsafe/+", 1, noop))
	assert.Equal(t, 2, c.SubscriptionCount())
}

func TestConnect_UnreachableBrokerKeepsRetrying(t *testing.T) {
	prev := connectWait
	connectWait = 200 * time.Millisecond
	t.Cleanup(func() { connectWait = prev })

	c, err := Connect(config.MQTTConfig{Broker: "tcp://127.0.0.1:1", ClientID: "greenhouse-test", QoS: 1})
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })

	assert.False(t, c.IsConnected())
	assert.ErrorIs(t, c.Publish("serre/cmd/phase", []byte("{}"), 1, true), ErrNotConnected)
}

func TestClient_NotConnectedByDefault(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)
	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Close())
}

func TestClient_WrapHandler(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)
	log := &recordingLogger{}
	c.SetLogger(log)

	var got string
	ok := c.wrapHandler(func(topic string, payload []byte) error {
		got = topic + ":" + string(payload)
		return nil
	})
	ok(nil, fakeMessage{topic: "serre/sensors/air", payload: []byte("{}")})
	assert.Equal(t, "serre/sensors/air:{}", got)

	failing := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })
	failing(nil, fakeMessage{topic: "serre/sensors/soil"})

	panicking := c.wrapHandler(func(string, []byte) error { panic("boom") })
	require.NotPanics(t, func() { panicking(nil, fakeMessage{topic: "serre/failsafe/climat"}) })

	assert.Equal(t, []string{"mqtt_handler_error"}, log.warns)
	assert.Equal(t, []string{"mqtt_handler_panic"}, log.errors)
}

func TestClient_DisconnectCallback(t *testing.T) {
	c := newClient(NewTopics("serre"), 1)
	c.connected = true

	var gotErr error
	c.SetOnDisconnect(func(err error) { gotErr = err })
	lost := errors.New("EOF")
	c.handleDisconnect(lost)

	assert.ErrorIs(t, gotErr, lost)
	assert.False(t, c.IsConnected())
}

func TestConnect_RejectsInvalidQoS(t *testing.T) {
	_, err := Connect(config.MQTTConfig{Broker: "tcp://127.0.0.1:1", QoS: 3})
	assert.ErrorIs(t, err, ErrInvalidQoS)
}

func TestBuildClientOptions(t *testing.T) {
	opts := buildClientOptions(config.MQTTConfig{
		Broker:   "tcp://broker:1883",
		ClientID: "greenhouse-api",
		Username: "serre",
		Password: "secret",
	})
	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "broker:1883", opts.Servers[0].Host)
	assert.Equal(t, "greenhouse-api", opts.ClientID)
	assert.Equal(t, "serre", opts.Username)
	assert.True(t, opts.AutoReconnect)
	assert.True(t, opts.ConnectRetry)
	assert.Equal(t, defaultConnectRetryInterval, opts.ConnectRetryInterval)
	assert.True(t, opts.CleanSession)

	configureLWT(opts, NewTopics("serre"), 1)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "serre/api/status", opts.WillTopic)
	assert.True(t, opts.WillRetained)
}
