// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/folio/internal/markdown"
	"github.com/jeranaias/folio/internal/model"
	"github.com/jeranaias/folio/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one transcript entry.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	if theme == nil {
		theme = styles.Get(styles.Dark)
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// SetWidth sets the available width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble. User messages sit on the right, bot
// messages on the left.
func (b *MessageBubble) View() string {
	contentWidth := b.Width * 3 / 4
	if contentWidth < 20 {
		contentWidth = 20
	}
	if contentWidth > b.Width && b.Width > 0 {
		contentWidth = b.Width
	}

	var style lipgloss.Style
	var body string
	if b.Message.IsUser() {
		style = b.theme.UserBubble
		// User text is shown as typed.
		body = b.Message.Text()
	} else {
		style = b.theme.BotBubble
		body = RenderFragments(markdown.Parse(b.Message.Text()), b.theme)
	}
	if body == "" {
		body = " "
	}

	bubble := style.MaxWidth(contentWidth).Width(bubbleWidth(body, contentWidth, style)).Render(body)

	parts := []string{b.header()}
	parts = append(parts, bubble)
	if chips := b.renderChips(contentWidth); chips != "" {
		parts = append(parts, chips)
	}

	align := lipgloss.Left
	if b.Message.IsUser() {
		align = lipgloss.Right
	}
	block := lipgloss.JoinVertical(align, parts...)
	if b.Width <= 0 {
		return block
	}
	return lipgloss.PlaceHorizontal(b.Width, align, block)
}

func (b *MessageBubble) header() string {
	label := b.theme.SenderLabel.Render(b.Message.Sender.DisplayName())
	if !b.ShowTimestamp || b.Message.Timestamp.IsZero() {
		return label
	}
	return label + " " + b.theme.Timestamp.Render(b.Message.FormatTime())
}

// renderChips lays the skill chips out in rows no wider than width.
func (b *MessageBubble) renderChips(width int) string {
	skills := b.Message.Skills()
	if len(skills) == 0 {
		return ""
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, skill := range skills {
		chip := b.theme.SkillChip.Render(skill)
		w := lipgloss.Width(chip)
		if rowWidth > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, chip)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

// bubbleWidth shrinks short messages so the bubble hugs its text.
func bubbleWidth(body string, maxWidth int, style lipgloss.Style) int {
	frame := style.GetHorizontalFrameSize()
	w := lipgloss.Width(body) + frame
	if w > maxWidth {
		return maxWidth - style.GetHorizontalBorderSize()
	}
	return w - style.GetHorizontalBorderSize()
}

// =============================================================================
// FRAGMENT RENDERING
// =============================================================================

// RenderFragments styles parsed markdown for display. Paragraphs are
// separated by a blank line.
func RenderFragments(paras []markdown.Paragraph, theme *styles.Theme) string {
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		var b strings.Builder
		for _, f := range p {
			if f.Code {
				b.WriteString(HighlightCode(f.Text, f.Lang, theme.Name))
				continue
			}
			b.WriteString(fragmentStyle(f, theme).Render(f.Text))
			if f.Link != "" && f.Link != f.Text && !strings.HasPrefix(f.Link, "mailto:") {
				b.WriteString(theme.Timestamp.Render(" (" + f.Link + ")"))
			}
		}
		out = append(out, b.String())
	}
	return strings.Join(out, "\n\n")
}

func fragmentStyle(f markdown.Fragment, theme *styles.Theme) lipgloss.Style {
	s := lipgloss.NewStyle()
	if f.Link != "" {
		s = theme.Link
	}
	if f.Bold {
		s = s.Bold(true)
	}
	if f.Italic {
		s = s.Italic(true)
	}
	return s
}
