package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flightdeck-io/flightdeck/internal/session/backoff"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 500*time.Millisecond, cfg.Session.DebounceWindow)
	require.Equal(t, "constant", cfg.Session.Reconnect.Mode)
	require.Equal(t, time.Second, cfg.Session.Reconnect.Delay)
	require.Zero(t, cfg.Session.Reconnect.MaxAttempts)
	require.Equal(t, "flightdeck", cfg.Auth.JWT.Issuer)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, "@daily", cfg.Maintenance.ShareSchedule)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug
session:
  debounce_window: 250ms
  reconnect:
    mode: exponential
    delay: 2s
    max_delay: 20s
    max_attempts: 5
auth:
  jwt:
    secret: file-secret
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 250*time.Millisecond, cfg.Session.DebounceWindow)
	require.Equal(t, "exponential", cfg.Session.Reconnect.Mode)
	require.Equal(t, 5, cfg.Session.Reconnect.MaxAttempts)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FLIGHTDECK_SERVER_PORT", "9200")
	t.Setenv("FLIGHTDECK_DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
}

func TestDatabaseServiceConfigMapsDriverFields(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "postgres",
		Postgres: DBAuthConfig{
			Host:     "db.internal",
			Port:     6543,
			Database: "flightdeck",
			Username: "svc",
			Password: "secret",
			Options:  map[string]string{"sslmode": "require"},
		},
	}

	out := cfg.DatabaseServiceConfig()
	require.Equal(t, "postgres", out.Driver)
	require.Equal(t, "db.internal", out.Host)
	require.Equal(t, 6543, out.Port)
	require.Equal(t, "flightdeck", out.Name)
	require.Equal(t, "svc", out.User)
	require.Equal(t, "require", out.Options["sslmode"])

	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./x.sqlite"}
	require.Empty(t, sqlite.DatabaseServiceConfig().Host)
}

func TestBackoffPolicyConstruction(t *testing.T) {
	constant := ReconnectConfig{Mode: "constant", Delay: 2 * time.Second}.BackoffPolicy()
	delay, ok := constant.Next(7)
	require.True(t, ok)
	require.Equal(t, 2*time.Second, delay)

	exp := ReconnectConfig{Mode: "exponential", Delay: time.Second, MaxDelay: 4 * time.Second}.BackoffPolicy()
	delay, ok = exp.Next(1)
	require.True(t, ok)
	require.Equal(t, time.Second, delay)
	delay, ok = exp.Next(10)
	require.True(t, ok)
	require.Equal(t, 4*time.Second, delay)

	bounded := ReconnectConfig{Delay: time.Second, MaxAttempts: 2}.BackoffPolicy()
	_, ok = bounded.Next(3)
	require.False(t, ok)

	// Zero config still yields a usable policy.
	var zero ReconnectConfig
	policy := zero.BackoffPolicy()
	require.Implements(t, (*backoff.Policy)(nil), policy)
	delay, ok = policy.Next(1)
	require.True(t, ok)
	require.Equal(t, time.Second, delay)
}
