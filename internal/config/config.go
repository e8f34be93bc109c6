// Package config loads the process configuration from configs/config.yml and
// the environment. The returned Config is a plain value: it is read once at
// start-up and passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"greenhouse_control/internal/models"

	"github.com/spf13/viper"
)

const (
	envPrefix   = "GREENHOUSE"
	tokenEnvVar = "API_TOKEN"
)

// Config is the full application configuration.
type Config struct {
	Port      string
	HTTP      HTTPConfig
	Log       LogConfig
	API       APIConfig
	DB        DBConfig
	MQTT      MQTTConfig
	Failsafe  FailsafeConfig
	RateLimit RateLimitConfig
	Sensors   SensorsConfig
	Actuators []string
}

// HTTPConfig lists the reverse proxies whose X-Forwarded-For is believed.
// Empty means the peer address is always the client address.
type HTTPConfig struct {
	TrustedProxies []string
}

type LogConfig struct {
	Level  string
	Format string
}

// APIConfig holds the bearer token every /api request must present.
type APIConfig struct {
	Token string
}

type DBConfig struct {
	Path string
}

// MQTTConfig describes the connection to the flow-engine broker.
type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

type FailsafeConfig struct {
	// AllowGlobal lets clients override the global flag directly.
	AllowGlobal bool
}

// RateLimitConfig is a fixed window per client IP. Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type SensorsConfig struct {
	StaleAfter   time.Duration
	Simulate     bool
	SimulateTick time.Duration
}

// ErrMissingToken is returned by Validate when no API token is configured.
var ErrMissingToken = errors.New("api token is not configured (set API_TOKEN)")

// Load reads configs/config.yml (if present) and the environment.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The flow deployment historically exported a bare API_TOKEN.
	if err := v.BindEnv("api.token", envPrefix+"_API_TOKEN", tokenEnvVar); err != nil {
		return Config{}, fmt.Errorf("bind api.token env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "1880")
	v.SetDefault("http.trusted_proxies", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.path", "greenhouse.db")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "greenhouse-api")
	v.SetDefault("mqtt.topic_prefix", "serre")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("failsafe.allow_global", false)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("sensors.stale_after", 2*time.Minute)
	v.SetDefault("sensors.simulate", false)
	v.SetDefault("sensors.simulate_tick", 5*time.Second)
	v.SetDefault("actuators.names", models.DefaultActuators)
}

func fromViper(v *viper.Viper) Config {
	qos := v.GetInt("mqtt.qos")
	if qos < 0 || qos > 2 {
		qos = 1
	}
	return Config{
		Port: v.GetString("port"),
		HTTP: HTTPConfig{TrustedProxies: dedupe(v.GetStringSlice("http.trusted_proxies"))},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		API: APIConfig{Token: v.GetString("api.token")},
		DB:  DBConfig{Path: v.GetString("db.path")},
		MQTT: MQTTConfig{
			Enabled:     v.GetBool("mqtt.enabled"),
			Broker:      v.GetString("mqtt.broker"),
			ClientID:    v.GetString("mqtt.client_id"),
			Username:    v.GetString("mqtt.username"),
			Password:    v.GetString("mqtt.password"),
			TopicPrefix: strings.Trim(v.GetString("mqtt.topic_prefix"), "/"),
			QoS:         byte(qos),
		},
		Failsafe: FailsafeConfig{AllowGlobal: v.GetBool("failsafe.allow_global")},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		Sensors: SensorsConfig{
			StaleAfter:   v.GetDuration("sensors.stale_after"),
			Simulate:     v.GetBool("sensors.simulate"),
			SimulateTick: v.GetDuration("sensors.simulate_tick"),
		},
		Actuators: dedupe(v.GetStringSlice("actuators.names")),
	}
}

// Validate checks settings the process cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.Token) == "" {
		return ErrMissingToken
	}
	if len(c.Actuators) == 0 {
		return errors.New("actuators.names must list at least one actuator")
	}
	for _, p := range c.HTTP.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("http.trusted_proxies: %q is not an IP address or CIDR", p)
		}
	}
	return nil
}

func validProxy(p string) bool {
	if net.ParseIP(p) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(p)
	return err == nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
