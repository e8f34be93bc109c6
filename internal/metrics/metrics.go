// Package metrics exposes the Prometheus collectors of the control API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greenhouse"

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)
	authFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Requests rejected for a missing or invalid bearer token",
		},
	)
	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
	)
	actuatorCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actuator_commands_total",
			Help:      "Accepted actuator state changes",
		},
		[]string{"actuator", "state"},
	)
	failsafeTripped = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failsafe_tripped",
			Help:      "1 when the failsafe flag is set",
		},
		[]string{"flag"},
	)
	sensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_value",
			Help:      "Last sensor reading",
		},
		[]string{"sensor"},
	)
	mqttMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mqtt_messages_total",
			Help:      "MQTT messages by direction and kind",
		},
		[]string{"direction", "kind"},
	)
	mqttConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_up",
			Help:      "Connection with the MQTT broker",
		},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func AuthFailure() { authFailures.Inc() }

func RateLimited() { rateLimited.Inc() }

func ActuatorCommand(name, state string) {
	actuatorCommands.WithLabelValues(name, state).Inc()
}

func SetFailsafe(flag string, tripped bool) {
	v := 0.0
	if tripped {
		v = 1
	}
	failsafeTripped.WithLabelValues(flag).Set(v)
}

func SetSensor(sensor string, value float64) {
	sensorValue.WithLabelValues(sensor).Set(value)
}

// MQTTMessage counts a message; direction is "in" or "out".
func MQTTMessage(direction, kind string) {
	mqttMessages.WithLabelValues(direction, kind).Inc()
}

func SetMQTTConnected(up bool) {
	if up {
		mqttConnected.Set(1)
		return
	}
	mqttConnected.Set(0)
}
