// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for folio.
//
// Configuration is read from ~/.folio/config.toml. Missing keys keep their
// built-in defaults. A .env file in the working directory is loaded into the
// process environment, and environment variables override file values.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    var verr config.ValidateErrors
//	    if errors.As(err, &verr) { ... }
//	}
//	timing := cfg.Chat.Timing()
//
// # Environment Variables
//
//   - FOLIO_OPENROUTER_KEY, OPENROUTER_API_KEY: cloud.openrouter_key
//   - FOLIO_MODEL: cloud.model
//   - FOLIO_THEME: ui.theme
//   - FOLIO_CONTACT_ENDPOINT: contact.endpoint
//   - FOLIO_LOG_LEVEL: log.level
//   - FOLIO_STATE_BACKEND: state.backend
//
// # Watching
//
// Watcher reloads the file when it changes on disk and hands the new
// configuration to a callback; the widget uses it to pick up theme edits.
package config
