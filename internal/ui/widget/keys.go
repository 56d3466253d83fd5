// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the widget's keyboard bindings.
type KeyMap struct {
	Open      key.Binding
	Close     key.Binding
	Submit    key.Binding
	Settings  key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Select    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter", " ", "o"),
			key.WithHelp("enter", "open chat"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Settings: key.NewBinding(
			key.WithKeys("ctrl+s", "f2"),
			key.WithHelp("C-s", "settings"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// closedHelp is shown under the launcher.
func (k KeyMap) closedHelp() []key.Binding {
	return []key.Binding{k.Open, k.Quit}
}

// openHelp is shown under the input.
func (k KeyMap) openHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Settings, k.PageUp, k.Close, k.ForceQuit}
}

// menuHelp is shown while the settings menu is open.
func (k KeyMap) menuHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Close}
}
