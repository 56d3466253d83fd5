// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the folio chat
// widget.
//
// The site offers an explicit dark/light choice, so unlike adaptive terminal
// themes each Name maps to one fixed Palette. "auto" is resolved once from
// the terminal background.
//
// # Key Types
//
//   - Name: theme name (dark, light, auto)
//   - Palette: the colors of one theme
//   - Theme: lipgloss styles built from a palette
//   - Slot: named style slot, for Lookup
//
// # Usage
//
//	theme := styles.NewTheme(styles.Dark)
//	bubble := theme.UserBubble.Render(text)
//
//	// Slot lookup, for callers that only know the slot by name
//	chip := styles.Lookup(styles.Light, styles.SlotSkillChip).Render("Go")
package styles
