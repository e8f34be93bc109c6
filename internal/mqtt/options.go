package mqtt

import (
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"greenhouse_control/internal/config"
)

const (
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout also bounds subscribe acknowledgements.
	defaultPublishTimeout = 5 * time.Second

	defaultDisconnectQuiesce = 1000 // milliseconds

	defaultKeepAlive = 30 * time.Second

	defaultMaxReconnectInterval = 30 * time.Second

	defaultConnectRetryInterval = 5 * time.Second

	maxQoS = 2

	// maxPayloadSize bounds outbound messages.
	maxPayloadSize = 64 << 10
)

// connectWait bounds how long Connect blocks before handing back a client
// that is still retrying.
var connectWait = defaultConnectTimeout

// buildClientOptions maps the broker section of the configuration onto paho options:
// auto-reconnect, retry of the first connection, clean session and
// credentials when a username is set.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(defaultConnectRetryInterval)
	opts.SetMaxReconnectInterval(defaultMaxReconnectInterval)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetOrderMatters(false)

	return opts
}

// configureLWT marks the API offline on the broker if the process dies
// without a clean disconnect, so the flow engine can fall back to its own rules.
func configureLWT(opts *pahomqtt.ClientOptions, topics Topics, qos byte) {
	opts.SetWill(topics.APIStatus(), statusOffline, qos, true)
}

const (
	statusOnline  = `{"status":"online"}`
	statusOffline = `{"status":"offline"}`
)
