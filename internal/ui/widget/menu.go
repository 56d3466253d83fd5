// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/folio/internal/ui/styles"
)

// =============================================================================
// SETTINGS MENU
// =============================================================================

// menuAction is one settings menu entry.
type menuAction int

const (
	actionClear menuAction = iota
	actionCopy
	actionToggleTheme
)

// menuState tracks the settings menu.
type menuState struct {
	open  bool
	index int
}

// menuActions lists the entries in display order.
var menuActions = []menuAction{actionClear, actionCopy, actionToggleTheme}

// menuLabel returns the entry text. The theme entry names the theme it
// switches to.
func menuLabel(a menuAction, current styles.Name) string {
	switch a {
	case actionClear:
		return "Clear chat"
	case actionCopy:
		return "Copy chat"
	case actionToggleTheme:
		if current.Toggle() == styles.Light {
			return "Switch to light theme"
		}
		return "Switch to dark theme"
	}
	return ""
}

// handleMenuKey moves the selection or runs the selected entry.
func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Settings):
		m.menu = menuState{}
	case key.Matches(msg, m.keys.Up):
		m.menu.index = (m.menu.index + len(menuActions) - 1) % len(menuActions)
	case key.Matches(msg, m.keys.Down):
		m.menu.index = (m.menu.index + 1) % len(menuActions)
	case key.Matches(msg, m.keys.Select):
		action := menuActions[m.menu.index]
		m.menu = menuState{}
		m.runAction(action)
	}
	return nil
}

// runAction performs a settings entry.
func (m *Model) runAction(a menuAction) {
	switch a {
	case actionClear:
		m.engine.Clear()
	case actionCopy:
		// The engine reports the outcome through the toast notifier.
		if err := m.engine.CopyTranscript(); err != nil {
			m.logger.Debug("copy transcript", "error", err)
		}
	case actionToggleTheme:
		m.toggleTheme()
	}
}

// renderMenu renders the open settings menu.
func (m Model) renderMenu() string {
	lines := make([]string, 0, len(menuActions)+1)
	lines = append(lines, m.theme.HeaderTitle.Render("Settings"))
	for i, a := range menuActions {
		label := menuLabel(a, m.theme.Name)
		if i == m.menu.index {
			lines = append(lines, m.theme.MenuItemSelected.Render(label))
		} else {
			lines = append(lines, m.theme.MenuItem.Render(label))
		}
	}
	return m.theme.Menu.Render(strings.Join(lines, "\n"))
}
