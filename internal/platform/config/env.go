package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// ServerConfig is the simulation service's process configuration.
type ServerConfig struct {
	Env           string        `env:"CRAPS_ENV" envDefault:"local"`
	HTTPAddr      string        `env:"CRAPS_HTTP_ADDR" envDefault:":8080"`
	RulesDir      string        `env:"CRAPS_RULES_DIR" envDefault:"configs"`
	Workers       int           `env:"CRAPS_WORKERS" envDefault:"0"`
	HistoryDB     string        `env:"CRAPS_HISTORY_DB"` // empty: no roll history
	WatchInterval time.Duration `env:"CRAPS_WATCH_INTERVAL" envDefault:"2s"`
	LogLevel      string        `env:"CRAPS_LOG_LEVEL" envDefault:"info"`

	// MaxSessions caps one POST /simulate job.
	MaxSessions int `env:"CRAPS_MAX_SESSIONS" envDefault:"10000"`
}

// LoadServer parses ServerConfig from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
