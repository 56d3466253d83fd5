// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/ui/components"
	"github.com/jeranaias/folio/internal/util"
)

// Fallback notice shown while the last turn used a canned answer.
const errorNoticeText = "The AI service is unavailable right now, so this is a saved answer."

// minViewportHeight keeps a few transcript rows visible on tiny terminals.
const minViewportHeight = 3

// =============================================================================
// VIEW
// =============================================================================

// View renders the widget.
func (m Model) View() string {
	if m.visibility == Closed {
		return m.viewClosed()
	}
	return m.viewOpen()
}

// viewClosed renders the launcher in the bottom-right corner.
func (m Model) viewClosed() string {
	var parts []string
	if m.ShowsHint() {
		parts = append(parts, m.theme.LauncherHint.Render("New here? Ask me about "+m.engine.Profile().FirstName()+"!"))
	}
	parts = append(parts, m.theme.Launcher.Render("Chat with AI"))
	parts = append(parts, m.help.ShortHelpView(m.keys.closedHelp()))

	block := lipgloss.JoinVertical(lipgloss.Right, parts...)
	if m.width <= 0 || m.height <= 0 {
		return block
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, block)
}

// viewOpen renders the chat panel.
func (m Model) viewOpen() string {
	sections := m.chromeTop()
	sections = append(sections, m.viewport.View())
	sections = append(sections, m.chromeBottom()...)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// chromeTop is everything above the transcript.
func (m Model) chromeTop() []string {
	parts := []string{m.renderHeader()}
	if m.menu.open {
		parts = append(parts, m.renderMenu())
	}
	return parts
}

// chromeBottom is everything below the transcript.
func (m Model) chromeBottom() []string {
	parts := []string{m.renderActivity()}
	if m.snap.Err != nil {
		parts = append(parts, m.theme.ErrorNotice.Render(util.TruncateWidth(errorNoticeText, m.innerWidth()-2)))
	}
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		parts = append(parts, components.RenderToastStack(toasts, m.innerWidth(), m.theme))
	}
	parts = append(parts, m.theme.InputContainer.Width(m.innerWidth()).Render(m.input.View()))

	bindings := m.keys.openHelp()
	if m.menu.open {
		bindings = m.keys.menuHelp()
	}
	parts = append(parts, m.theme.StatusBar.Render(m.help.ShortHelpView(bindings)))
	return parts
}

func (m Model) renderHeader() string {
	profile := m.engine.Profile()
	title := m.theme.HeaderTitle.Render("AI Assistant")
	subtitle := m.theme.HeaderSubtitle.Render(" Ask about " + profile.FirstName())
	return m.theme.Header.Width(m.innerWidth()).Render(title + subtitle)
}

// renderActivity is the single line under the transcript showing the
// thinking spinner or typing indicator.
func (m Model) renderActivity() string {
	switch {
	case m.snap.State == engine.StateThinking:
		return m.thinking.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
	case m.typingShown():
		return m.theme.TypingText.Render("AI Assistant is typing") + m.typing.spinner.View()
	}
	return ""
}

// renderTranscript renders every message for the viewport.
func (m Model) renderTranscript() string {
	if len(m.snap.Messages) == 0 {
		return ""
	}
	width := m.innerWidth()
	rows := make([]string, 0, len(m.snap.Messages))
	for _, msg := range m.snap.Messages {
		bubble := components.NewMessageBubble(msg, m.theme)
		bubble.SetWidth(width)
		rows = append(rows, bubble.View())
	}
	return strings.Join(rows, "\n")
}

// innerWidth is the usable width, with a default before the first resize.
func (m Model) innerWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

// layout sizes the viewport to the space the chrome leaves.
func (m *Model) layout() {
	width := m.innerWidth()
	m.viewport.Width = width
	m.input.Width = width - lipgloss.Width(m.input.Prompt) - 1

	if m.height <= 0 {
		return
	}
	used := 0
	for _, s := range m.chromeTop() {
		used += lipgloss.Height(s)
	}
	for _, s := range m.chromeBottom() {
		used += lipgloss.Height(s)
	}
	h := m.height - used
	if h < minViewportHeight {
		h = minViewportHeight
	}
	if h != m.viewport.Height {
		m.viewport.Height = h
		m.viewport.GotoBottom()
	}
}
