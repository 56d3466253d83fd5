// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors one theme is built from.
type Palette struct {
	// Accents
	Accent     lipgloss.Color
	AccentDeep lipgloss.Color
	Brand      lipgloss.Color

	// Surfaces
	Surface       lipgloss.Color
	SurfaceDim    lipgloss.Color
	SurfaceBright lipgloss.Color
	Overlay       lipgloss.Color

	// Text
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextInverse   lipgloss.Color

	// Chat bubbles
	UserBubbleBg     lipgloss.Color
	UserBubbleFg     lipgloss.Color
	UserBubbleBorder lipgloss.Color
	BotBubbleBg      lipgloss.Color
	BotBubbleFg      lipgloss.Color
	BotBubbleBorder  lipgloss.Color

	// Semantic
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color
	Link    lipgloss.Color
}

// =============================================================================
// DARK PALETTE
// =============================================================================

// DarkPalette is the default theme.
var DarkPalette = Palette{
	Accent:     "#A78BFA", // purple
	AccentDeep: "#4C1D95",
	Brand:      "#22D3EE", // cyan

	Surface:       "#1E1E2E",
	SurfaceDim:    "#181825",
	SurfaceBright: "#313244",
	Overlay:       "#45475A",

	TextPrimary:   "#CDD6F4",
	TextSecondary: "#A6ADC8",
	TextMuted:     "#6C7086",
	TextInverse:   "#1E1E2E",

	UserBubbleBg:     "#1D4ED8",
	UserBubbleFg:     "#E0F2FE",
	UserBubbleBorder: "#3B82F6",
	BotBubbleBg:      "#3B3655",
	BotBubbleFg:      "#E9E4F5",
	BotBubbleBorder:  "#A78BFA",

	Success: "#34D399",
	Error:   "#FB7185",
	Warning: "#FBBF24",
	Info:    "#60A5FA",
	Link:    "#60A5FA",
}

// =============================================================================
// LIGHT PALETTE
// =============================================================================

// LightPalette is the light theme.
var LightPalette = Palette{
	Accent:     "#7C3AED",
	AccentDeep: "#5B21B6",
	Brand:      "#0891B2",

	Surface:       "#FFFFFF",
	SurfaceDim:    "#F5F5F5",
	SurfaceBright: "#FAFAFA",
	Overlay:       "#D4D4D4",

	TextPrimary:   "#1F2937",
	TextSecondary: "#6B7280",
	TextMuted:     "#9CA3AF",
	TextInverse:   "#FFFFFF",

	UserBubbleBg:     "#DBEAFE",
	UserBubbleFg:     "#1E40AF",
	UserBubbleBorder: "#3B82F6",
	BotBubbleBg:      "#F5F3FF",
	BotBubbleFg:      "#5B4B8A",
	BotBubbleBorder:  "#C4B5FD",

	Success: "#059669",
	Error:   "#E11D48",
	Warning: "#D97706",
	Info:    "#2563EB",
	Link:    "#2563EB",
}

// StatusIndicators pairs each notice kind with a shape so that state is not
// conveyed by color alone.
var StatusIndicators = struct {
	Success string
	Error   string
	Warning string
	Info    string
}{
	Success: "[OK]",
	Error:   "[!!]",
	Warning: "[!]",
	Info:    "[i]",
}
