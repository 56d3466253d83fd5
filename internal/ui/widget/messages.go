// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/folio/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// EngineChangedMsg reports that the engine's snapshot may have changed.
type EngineChangedMsg struct{}

// ThemeChangedMsg switches the theme without persisting the choice. The
// config watcher sends it when ui.theme changes on disk.
type ThemeChangedMsg struct {
	Name styles.Name
}

// =============================================================================
// CHANGE FEED
// =============================================================================

// ChangeFeed carries engine change notifications into the Bubble Tea loop.
// Notifications coalesce: any number of Notify calls between two reads
// produce one EngineChangedMsg.
type ChangeFeed struct {
	ch chan struct{}
}

// NewChangeFeed creates a feed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{ch: make(chan struct{}, 1)}
}

// Notify records a change. It never blocks, so the engine may call it from
// inside the program's Update.
func (f *ChangeFeed) Notify() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next change.
func (f *ChangeFeed) wait() tea.Cmd {
	return func() tea.Msg {
		<-f.ch
		return EngineChangedMsg{}
	}
}
