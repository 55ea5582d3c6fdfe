// Package config loads process configuration from the environment,
// following the enumerated configuration surface in §6.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full set of environment-driven settings for the service.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	ERPDatabaseURL        string `env:"ERP_DATABASE_URL,required"`
	ProjectionDatabaseURL string `env:"PROJECTION_DATABASE_URL,required"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	DevLogging bool   `env:"LOG_DEV" envDefault:"false"`

	// CacheTTL governs reuse of a recently computed MRP run (§5).
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	// RequestDeadline is the end-to-end deadline for one HTTP request (§5).
	RequestDeadline time.Duration `env:"REQUEST_DEADLINE" envDefault:"30s"`
	// UpstreamCallTimeout is parsed from the environment; no ERP gateway or
	// projection store call applies it, so single calls are bounded only by
	// the run's RequestDeadline.
	UpstreamCallTimeout time.Duration `env:"UPSTREAM_CALL_TIMEOUT" envDefault:"10s"`
	// QtyTolerance is the absolute tolerance used when comparing quantities.
	QtyTolerance float64 `env:"QTY_TOLERANCE" envDefault:"0.01"`
	// ScrapCap rejects BOM lines whose scrap_percent exceeds this value.
	ScrapCap float64 `env:"SCRAP_CAP" envDefault:"100"`
}

// Load reads a local .env file if present (ignored if absent) and then
// parses the environment into a Config. A malformed or incomplete
// configuration is a startup error (exit code 1 per §6).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}
