// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Width-aware helpers. Terminal cells, not bytes or runes, decide
// whether a chat bubble or a launcher label fits, so CJK and emoji count as
// two columns.

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth shortens s to at most maxWidth columns, appending "..." when
// anything was cut and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// WrapWidth breaks s into lines no wider than width columns, splitting on
// whitespace. Words longer than width are placed on their own line and left
// intact. Existing newlines are preserved.
func WrapWidth(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var line strings.Builder
		lineWidth := 0
		for _, w := range words {
			ww := runewidth.StringWidth(w)
			switch {
			case lineWidth == 0:
				line.WriteString(w)
				lineWidth = ww
			case lineWidth+1+ww <= width:
				line.WriteByte(' ')
				line.WriteString(w)
				lineWidth += 1 + ww
			default:
				lines = append(lines, line.String())
				line.Reset()
				line.WriteString(w)
				lineWidth = ww
			}
		}
		lines = append(lines, line.String())
	}
	return lines
}
