package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/mailcast/pkg/dispatch"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/mailer/provider"
	"github.com/dmitrymomot/mailcast/pkg/storage"
)

// config is the full environment of the service.
type config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"0s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	MaxBodyBytes    int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"33554432"`

	Log      logger.Config
	Mailer   provider.Config
	Dispatch dispatch.Config
	Storage  storage.Config
}

// loadConfig reads envFile (or .env when it exists) and parses the environment.
// Variables already set in the process win over file values.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return config{}, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
