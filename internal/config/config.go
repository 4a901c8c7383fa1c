// Package config loads library configuration from environment variables.
//
// The library runs inside a foreign host process, so all configuration
// is ambient:
//   - FRONTENDENGINE_LOG_LEVEL: minimum log level ("debug", "info",
//     "warn", "error"; default "error").
//   - FRONTENDENGINE_METRICS: set to "false" to skip metrics collection
//     (default true).
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration for the embedded library.
type Config struct {
	LogLevel string `env:"FRONTENDENGINE_LOG_LEVEL" envDefault:"error"`
	Metrics  bool   `env:"FRONTENDENGINE_METRICS" envDefault:"true"`
}

// Load reads configuration from environment variables, applying defaults
// where appropriate.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
