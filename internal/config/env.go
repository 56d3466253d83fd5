// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides mirrors the environment variables folio reads. Unset
// variables leave the zero value and do not override.
type envOverrides struct {
	OpenRouterKey    string `env:"FOLIO_OPENROUTER_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	Model            string `env:"FOLIO_MODEL"`
	Theme            string `env:"FOLIO_THEME"`
	ContactEndpoint  string `env:"FOLIO_CONTACT_ENDPOINT"`
	LogLevel         string `env:"FOLIO_LOG_LEVEL"`
	StateBackend     string `env:"FOLIO_STATE_BACKEND"`
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - FOLIO_OPENROUTER_KEY: overrides cloud.openrouter_key
//   - OPENROUTER_API_KEY: same, used when FOLIO_OPENROUTER_KEY is unset
//   - FOLIO_MODEL: overrides cloud.model
//   - FOLIO_THEME: overrides ui.theme
//   - FOLIO_CONTACT_ENDPOINT: overrides contact.endpoint
//   - FOLIO_LOG_LEVEL: overrides log.level
//   - FOLIO_STATE_BACKEND: overrides state.backend
func (c *Config) ApplyEnvOverrides() error {
	o, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	switch {
	case o.OpenRouterKey != "":
		c.Cloud.OpenRouterKey = o.OpenRouterKey
	case o.OpenRouterAPIKey != "":
		c.Cloud.OpenRouterKey = o.OpenRouterAPIKey
	}
	if o.Model != "" {
		c.Cloud.Model = o.Model
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	if o.ContactEndpoint != "" {
		c.Contact.Endpoint = o.ContactEndpoint
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.StateBackend != "" {
		c.State.Backend = o.StateBackend
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Variables already set are not replaced and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
