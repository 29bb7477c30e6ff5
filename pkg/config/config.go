// Package config loads server configuration from YAML with env overrides
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"suitec/pkg/logger"
)

// Duration wraps time.Duration so YAML values like "30m" or "24h" parse.
// A bare integer is taken as seconds.
type Duration time.Duration

// Std returns the wrapped time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Config holds all server configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Digest   DigestConfig   `yaml:"digest"`
	Logging  logger.Config  `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig for PostgreSQL
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration      `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration      `yaml:"conn_max_idle_time"`
	Timeout         Duration      `yaml:"timeout"`
}

// RedisConfig for the leaderboard cache
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	CacheTTL Duration      `yaml:"cache_ttl"`
}

// JWTConfig for auth tokens
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	Expiration Duration      `yaml:"expiration"`
}

// EmailConfig for digest delivery
type EmailConfig struct {
	Provider       string  `yaml:"provider"` // sendgrid or console
	FromName       string  `yaml:"from_name"`
	FromAddress    string  `yaml:"from_address"`
	SendgridAPIKey string  `yaml:"sendgrid_api_key"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
}

// DigestConfig pins the cutoff hours so that job runtime cannot skew the
// aggregation windows. Hours are UTC, 0-23. WeeklyWeekday follows
// time.Weekday numbering (0 = Sunday).
type DigestConfig struct {
	DailyHour     int `yaml:"daily_hour"`
	WeeklyHour    int `yaml:"weekly_hour"`
	WeeklyWeekday int `yaml:"weekly_weekday"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "suitec",
			Database:        "suitec_dev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: Duration(30 * time.Minute),
			ConnMaxIdleTime: Duration(5 * time.Minute),
			Timeout:         Duration(5 * time.Second),
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			CacheTTL: Duration(time.Minute),
		},
		JWT: JWTConfig{
			Issuer:     "suitec",
			Expiration: Duration(24 * time.Hour),
		},
		Email: EmailConfig{
			Provider:      "console",
			FromName:      "SuiteC",
			FromAddress:   "no-reply@suitec.local",
			RatePerSecond: 10,
		},
		Digest: DigestConfig{
			DailyHour:     7,
			WeeklyHour:    8,
			WeeklyWeekday: 0,
		},
		Logging: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads configuration from a YAML file, applying defaults for missing
// values and env-var overrides for secrets
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Secrets come from the environment in deployed environments so they never
// land in a checked-in YAML file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SUITEC_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("SUITEC_JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.Email.SendgridAPIKey = v
	}
	if v := os.Getenv("SUITEC_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}

func (c *Config) validate() error {
	if c.Digest.DailyHour < 0 || c.Digest.DailyHour > 23 {
		return fmt.Errorf("digest.daily_hour must be 0-23, got %d", c.Digest.DailyHour)
	}
	if c.Digest.WeeklyHour < 0 || c.Digest.WeeklyHour > 23 {
		return fmt.Errorf("digest.weekly_hour must be 0-23, got %d", c.Digest.WeeklyHour)
	}
	if c.Digest.WeeklyWeekday < 0 || c.Digest.WeeklyWeekday > 6 {
		return fmt.Errorf("digest.weekly_weekday must be 0-6, got %d", c.Digest.WeeklyWeekday)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (set SUITEC_JWT_SECRET)")
	}
	return nil
}
