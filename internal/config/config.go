// Package config loads matchengine's process configuration from the
// environment, and an optional .env file, using struct tags instead of
// hand-rolled getenv/parseInt helpers.
package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the full set of environment-controlled settings for the
// matchengine binary.
type Config struct {
	ListenAddr  string   `env:"LISTEN_ADDR" envDefault:":8080"`
	Symbols     []string `env:"SYMBOLS" envDefault:"BTCUSD,ETHUSD" envSeparator:","`
	CORSOrigin  string   `env:"CORS_ORIGIN" envDefault:"*"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	DevLogs     bool     `env:"DEV_LOGS" envDefault:"false"`
	DepthLevels int      `env:"DEPTH_LEVELS" envDefault:"10"`
}

// Load reads a .env file if present (missing is not an error) and then
// parses the process environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "load .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if len(c.Symbols) == 0 {
		return errors.New("SYMBOLS must name at least one symbol")
	}
	if c.DepthLevels <= 0 {
		return errors.New("DEPTH_LEVELS must be positive")
	}
	return nil
}
