// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"MOGGER_DB_PATH" envDefault:"./data/mogger.db"`
	SessionSecret string `env:"MOGGER_SESSION_SECRET,required"`
	ServerHost    string `env:"MOGGER_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"MOGGER_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"MOGGER_ENV" envDefault:"development"`
	LogLevel      string `env:"MOGGER_LOG_LEVEL" envDefault:"info"`

	// Feature toggles
	AllowAnonComments bool `env:"MOGGER_ALLOW_ANON_COMMENTS" envDefault:"true"` // Guest comments under a display name
	AllowSignups      bool `env:"MOGGER_ALLOW_SIGNUPS" envDefault:"false"`      // Open self-registration

	// Seeding configuration
	DoSeed bool `env:"MOGGER_DO_SEED" envDefault:"true"` // Create default groups and admin on boot
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session
// secret, which also keys the CSRF protection.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MOGGER_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
