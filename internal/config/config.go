package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the care service.
// Environment variables are automatically parsed from the BLOOMIE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: sqlite (local) or postgres (cloud)
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/bloomie.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Advisor (LLM synthesis path). An empty API key disables the primary
	// path; the deterministic fallback then handles every run.
	AdvisorBaseURL         string `envconfig:"ADVISOR_BASE_URL" default:"https://api.openai.com"`
	AdvisorAPIKey          string `envconfig:"ADVISOR_API_KEY" default:""`
	AdvisorModel           string `envconfig:"ADVISOR_MODEL" default:"gpt-4o-mini"`
	AdvisorTimeoutSeconds  int    `envconfig:"ADVISOR_TIMEOUT_SECONDS" default:"20"`
	AdvisorCacheTTLMinutes int    `envconfig:"ADVISOR_CACHE_TTL_MINUTES" default:"30"`

	// Detector policy thresholds. These mirror observed product behavior and
	// are tunable policy, not fixed rules.
	DetectorWindowDays       int     `envconfig:"DETECTOR_WINDOW_DAYS" default:"30"`
	DetectorMinLogs          int     `envconfig:"DETECTOR_MIN_LOGS" default:"3"`
	DetectorScoreDelta       float64 `envconfig:"DETECTOR_SCORE_DELTA" default:"0.3"`
	DetectorOverdueRatio     float64 `envconfig:"DETECTOR_OVERDUE_RATIO" default:"1.3"`
	DetectorWaterUrgentRatio float64 `envconfig:"DETECTOR_WATER_URGENT_RATIO" default:"2.0"`
	DetectorFeedUrgentRatio  float64 `envconfig:"DETECTOR_FEED_URGENT_RATIO" default:"1.8"`

	// Acknowledgement validity window in days.
	AckWindowDays int `envconfig:"ACK_WINDOW_DAYS" default:"7"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"5"`

	// Event bus buffer for notification fan-out.
	EventBufferSize int `envconfig:"EVENT_BUFFER_SIZE" default:"64"`
}

// ResolveDefaults validates the storage driver selection.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required for sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with BLOOMIE_
// Example: BLOOMIE_HTTP_PORT, BLOOMIE_DB_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("BLOOMIE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("advisor_model", cfg.AdvisorModel).
		Bool("advisor_enabled", cfg.AdvisorAPIKey != "").
		Int("detector_window_days", cfg.DetectorWindowDays).
		Int("ack_window_days", cfg.AckWindowDays).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		HTTPPort:                  8080,
		DBDriver:                  "sqlite",
		SQLitePath:                ":memory:",
		AdvisorModel:              "gpt-4o-mini",
		AdvisorTimeoutSeconds:     5,
		AdvisorCacheTTLMinutes:    30,
		DetectorWindowDays:        30,
		DetectorMinLogs:           3,
		DetectorScoreDelta:        0.3,
		DetectorOverdueRatio:      1.3,
		DetectorWaterUrgentRatio:  2.0,
		DetectorFeedUrgentRatio:   1.8,
		AckWindowDays:             7,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		EventBufferSize:           16,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }
