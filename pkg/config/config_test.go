package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  conn_max_lifetime: 30m
  timeout: 5s
redis:
  cache_ttl: 90s
jwt:
  secret: test-secret
  expiration: 24h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime.Std())
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout.Std())
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL.Std())
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration.Std())

	// Untouched sections keep their defaults
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Email.Provider)
}

func TestLoadBareIntegerDurationMeansSeconds(t *testing.T) {
	path := writeConfig(t, `
database:
  timeout: 10
jwt:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout.Std())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
database:
  timeout: soonish
jwt:
  secret: test-secret
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SUITEC_JWT_SECRET", "env-secret")
	t.Setenv("SUITEC_DB_PASSWORD", "env-password")
	t.Setenv("SUITEC_REDIS_ADDR", "cache.internal:6379")

	path := writeConfig(t, `
jwt:
  secret: file-secret
database:
  password: file-password
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing jwt secret", "server:\n  port: 8080\n"},
		{"daily hour out of range", "jwt:\n  secret: s\ndigest:\n  daily_hour: 24\n"},
		{"weekly hour out of range", "jwt:\n  secret: s\ndigest:\n  weekly_hour: -1\n"},
		{"weekday out of range", "jwt:\n  secret: s\ndigest:\n  weekly_weekday: 7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}
