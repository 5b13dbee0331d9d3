package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration, populated from the environment.
type Config struct {
	// ServerAddress is the bind address for the HTTP API.
	ServerAddress string `env:"TNR_ADDRESS" envDefault:":8080"`
	// DBPath is the sqlite database location.
	DBPath string `env:"TNR_DB" envDefault:"./data/tnr.db"`
	// AITickSeconds is the cadence of the background scanner that nudges
	// battles whose active actor is an idle AI.
	AITickSeconds int `env:"TNR_AI_TICK_SECONDS" envDefault:"5"`
	// GinReleaseMode switches gin out of debug logging.
	GinReleaseMode bool `env:"TNR_GIN_RELEASE" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return &cfg, nil
}
