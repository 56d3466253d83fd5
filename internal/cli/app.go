// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Construction of the collaborators every command shares.

package cli

import (
	"fmt"
	"net/http"

	"github.com/jeranaias/folio/internal/clipboard"
	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/config"
	"github.com/jeranaias/folio/internal/contact"
	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/logging"
	"github.com/jeranaias/folio/internal/store"
	"github.com/jeranaias/folio/internal/ui/styles"
)

// App bundles the configuration and the long-lived collaborators of one
// folio process.
type App struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logging.Logger
	Store      store.Store
	Cloud      *cloud.Client
	Contact    *contact.Client
	Clipboard  clipboard.System
}

// NewApp loads .env and the configuration, applies the command-line
// overrides in args, and builds the logger, state store and clients.
func NewApp(args Args) (*App, error) {
	cfg, path, err := loadConfig(args)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.Log.Level,
		Path:  cfg.Log.LogPath(),
		Mode:  cfg.Log.Mode,
	})
	if err != nil {
		return nil, NewCommandError("folio", "start", "could not open log", err)
	}

	// RELIABILITY: an unusable state directory costs the visitor their saved
	// theme, not the session.
	st, err := store.Open(cfg.State.Backend, cfg.State.StatePath())
	if err != nil {
		logger.Warn("state store unavailable, using memory",
			"backend", cfg.State.Backend, "path", cfg.State.StatePath(), "error", err)
		st = store.NewMemory()
	}

	cloudClient := cloud.NewClient(cfg.Cloud.OpenRouterKey).
		WithBaseURL(cfg.Cloud.BaseURL).
		WithModel(cfg.Cloud.Model).
		WithSiteURL(cfg.Cloud.SiteURL).
		WithSiteName(cfg.Cloud.SiteName).
		WithTimeout(cfg.Cloud.Timeout()).
		WithRateLimit(cfg.Cloud.RequestsPerMinute).
		WithLogger(logger)
	if !cloudClient.IsConfigured() {
		logger.Info("no OpenRouter key configured, answers come from the fallback rules")
	}

	contactClient := contact.NewClient(cfg.Contact.Endpoint).
		WithHTTPClient(&http.Client{Timeout: cfg.Contact.Timeout()}).
		WithLogger(logger)

	logger.Debug("folio started",
		"version", Version, "config", path, "model", cloudClient.Model(),
		"state_backend", cfg.State.Backend)

	return &App{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Store:      st,
		Cloud:      cloudClient,
		Contact:    contactClient,
		Clipboard:  clipboard.New(),
	}, nil
}

// NewEngine builds a transcript engine over the app's cloud client.
func (a *App) NewEngine(notifier engine.Notifier, onChange func()) *engine.Engine {
	return engine.New(engine.Options{
		Completer: a.Cloud,
		Profile:   a.Config.Profile.Profile(),
		Timing:    a.Config.Chat.Timing(),
		Clipboard: a.Clipboard,
		Notifier:  notifier,
		Logger:    a.Logger,
		OnChange:  onChange,
	})
}

// Close releases the store and flushes the log.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("closing state store failed", "error", err)
	}
	a.Logger.Sync()
}

// loadConfig resolves the config path, loads it and applies the flag
// overrides. Flags beat the environment, which beats the file.
func loadConfig(args Args) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}

	path := args.ConfigPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}

	if args.Model != "" {
		cfg.Cloud.Model = args.Model
	}
	if args.Theme != "" {
		if _, ok := styles.ParseName(args.Theme); !ok {
			return nil, path, &ValidationError{
				Field:   "--theme",
				Value:   args.Theme,
				Reason:  fmt.Sprintf("must be %s, %s or %s", styles.Dark, styles.Light, styles.Auto),
				Example: "folio --theme light",
			}
		}
		cfg.UI.Theme = args.Theme
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}

	config.SetGlobal(cfg)
	return cfg, path, nil
}
