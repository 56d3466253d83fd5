// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - The chat widget shell command.

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/folio/internal/config"
	"github.com/jeranaias/folio/internal/ui/components"
	"github.com/jeranaias/folio/internal/ui/widget"
)

// HandleTUI runs the widget shell until the user quits.
func HandleTUI(args Args) error {
	if err := RequiresTTY("run the chat widget"); err != nil {
		return err
	}

	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	toasts := components.NewToastManager()
	feed := widget.NewChangeFeed()
	eng := app.NewEngine(toasts, feed.Notify)

	m := widget.New(widget.Options{
		Engine:    eng,
		Feed:      feed,
		Store:     app.Store,
		Toasts:    toasts,
		Theme:     app.Config.UI.ThemeName(),
		StartOpen: args.Open,
		Logger:    app.Logger,
	})

	opts := []tea.ProgramOption{}
	if app.Config.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, opts...)

	stop := watchTheme(app, args, p)
	defer stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat widget failed: %w", err)
	}
	eng.Cancel()
	return nil
}

// watchTheme forwards ui.theme edits in the config file to the running
// program. A --theme flag pins the theme, so nothing is watched then. The
// returned func stops the watcher.
func watchTheme(app *App, args Args, p *tea.Program) func() {
	if args.Theme != "" {
		return func() {}
	}

	current := app.Config.UI.ThemeName()
	w, err := config.NewWatcher(app.ConfigPath, 0, func(cfg *config.Config, err error) {
		if err != nil {
			app.Logger.Warn("config reload failed", "path", app.ConfigPath, "error", err)
			return
		}
		name := cfg.UI.ThemeName()
		if name == current {
			return
		}
		current = name
		app.Logger.Info("theme changed in config", "theme", string(name))
		p.Send(widget.ThemeChangedMsg{Name: name})
	})
	if err != nil {
		app.Logger.Warn("config watcher unavailable", "error", err)
		return func() {}
	}
	if err := w.Watch(); err != nil {
		app.Logger.Warn("config watcher unavailable", "path", app.ConfigPath, "error", err)
		_ = w.Close()
		return func() {}
	}
	return func() { _ = w.Close() }
}
