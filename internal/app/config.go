package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/flightdeck-io/flightdeck/internal/database"
	"github.com/flightdeck-io/flightdeck/internal/session/backoff"
)

// Config represents the runtime configuration for the FlightDeck backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Session     SessionConfig     `mapstructure:"session"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// SessionConfig tunes the collaborative dashboard session behaviour.
type SessionConfig struct {
	DebounceWindow time.Duration   `mapstructure:"debounce_window"`
	Reconnect      ReconnectConfig `mapstructure:"reconnect"`
}

// ReconnectConfig shapes the retry policy applied after abnormal disconnects.
type ReconnectConfig struct {
	Mode        string        `mapstructure:"mode"` // constant or exponential
	Delay       time.Duration `mapstructure:"delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	MaxAttempts int           `mapstructure:"max_attempts"` // 0 means unbounded
	Jitter      float64       `mapstructure:"jitter"`
}

// AuthConfig captures authentication settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules background cleanup jobs.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ShareSchedule string `mapstructure:"share_schedule"`
	CacheSchedule string `mapstructure:"cache_schedule"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("FLIGHTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/flightdeck.sqlite")

	v.SetDefault("session.debounce_window", "500ms")
	v.SetDefault("session.reconnect.mode", "constant")
	v.SetDefault("session.reconnect.delay", "1s")
	v.SetDefault("session.reconnect.max_delay", "30s")
	v.SetDefault("session.reconnect.max_attempts", 0)
	v.SetDefault("session.reconnect.jitter", 0.0)

	v.SetDefault("auth.jwt.issuer", "flightdeck")
	v.SetDefault("auth.jwt.access_token_ttl", "12h")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.share_schedule", "@daily")
	v.SetDefault("maintenance.cache_schedule", "@hourly")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// DatabaseServiceConfig converts DatabaseConfig to the database package representation.
func (c DatabaseConfig) DatabaseServiceConfig() database.Config {
	cfg := database.Config{
		Driver: c.Driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres":
		cfg.Host = c.Postgres.Host
		cfg.Port = c.Postgres.Port
		cfg.Name = c.Postgres.Database
		cfg.User = c.Postgres.Username
		cfg.Password = c.Postgres.Password
		cfg.Options = c.Postgres.Options
	case "mysql":
		cfg.Host = c.MySQL.Host
		cfg.Port = c.MySQL.Port
		cfg.Name = c.MySQL.Database
		cfg.User = c.MySQL.Username
		cfg.Password = c.MySQL.Password
		cfg.Options = c.MySQL.Options
	}

	return cfg
}

// BackoffPolicy converts ReconnectConfig into a session backoff policy.
func (c ReconnectConfig) BackoffPolicy() backoff.Policy {
	delay := c.Delay
	if delay <= 0 {
		delay = time.Second
	}

	var policy backoff.Policy
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "exponential":
		maxDelay := c.MaxDelay
		if maxDelay < delay {
			maxDelay = 30 * time.Second
		}
		policy = backoff.Exponential{Base: delay, Max: maxDelay}
	default:
		policy = backoff.Constant(delay)
	}

	if c.Jitter > 0 {
		policy = backoff.WithJitter(policy, c.Jitter)
	}
	if c.MaxAttempts > 0 {
		policy = backoff.WithMaxAttempts(policy, c.MaxAttempts)
	}
	return policy
}
