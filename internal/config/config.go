// Package config loads the process-wide configuration from environment
// variables. The resulting Config is constructed once in main and passed
// explicitly into each component; nothing reads the environment after
// startup.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the server needs.
//
// The three secrets (JWTSecret, GoogleClientID, GeminiAPIKey) deliberately
// have no defaults: a deployment that forgets one must fail at startup, not
// at the first request that needs it.
type Config struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"DB_PATH" envDefault:"data/matricare.db"`

	JWTSecret      string `env:"JWT_SECRET"`
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
}

// Load parses the environment and validates required values.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var missing []error
	if c.JWTSecret == "" {
		missing = append(missing, errors.New("config: JWT_SECRET must be set"))
	}
	if c.GoogleClientID == "" {
		missing = append(missing, errors.New("config: GOOGLE_CLIENT_ID must be set"))
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, errors.New("config: GEMINI_API_KEY must be set"))
	}
	return errors.Join(missing...)
}
