package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            5432,
		User:            "suitec",
		Password:        "suitec",
		Database:        "suitec",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Timeout:         5 * time.Second,
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Host: "localhost"}.withDefaults()
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "disable", cfg.SSLMode)
}

func TestConfigDSN(t *testing.T) {
	dsn := testConfig().dsn()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=suitec")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "connect_timeout=5")
}

func TestNewDB(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	require.NoError(t, db.HealthCheck(context.Background()))
	assert.GreaterOrEqual(t, db.Stats().MaxOpenConnections, 5)
}
