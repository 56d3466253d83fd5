// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME NAMES
// =============================================================================

// Name is a theme name.
type Name string

const (
	Dark  Name = "dark"
	Light Name = "light"
	// Auto picks Dark or Light from the terminal background.
	Auto Name = "auto"
)

// ParseName normalizes s. Unknown names report ok=false and Dark.
func ParseName(s string) (Name, bool) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Dark:
		return Dark, true
	case Light:
		return Light, true
	case Auto:
		return Auto, true
	default:
		return Dark, false
	}
}

// Resolve turns Auto into Dark or Light. Unknown names resolve to Dark.
func (n Name) Resolve() Name {
	switch n {
	case Light:
		return Light
	case Auto:
		if termenv.HasDarkBackground() {
			return Dark
		}
		return Light
	default:
		return Dark
	}
}

// Toggle flips between Dark and Light. Auto is resolved first.
func (n Name) Toggle() Name {
	if n.Resolve() == Dark {
		return Light
	}
	return Dark
}

// Palette returns the colors of the resolved theme.
func (n Name) Palette() Palette {
	if n.Resolve() == Light {
		return LightPalette
	}
	return DarkPalette
}

// =============================================================================
// THEME
// =============================================================================

// Theme holds all the styled components for the widget.
type Theme struct {
	Name    Name
	Palette Palette

	// ==========================================================================
	// CONTAINER AND HEADER STYLES
	// ==========================================================================

	App            lipgloss.Style
	Panel          lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// LAUNCHER STYLES (closed widget)
	// ==========================================================================

	Launcher     lipgloss.Style
	LauncherHint lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble  lipgloss.Style
	BotBubble   lipgloss.Style
	SenderLabel lipgloss.Style
	Timestamp   lipgloss.Style
	SkillChip   lipgloss.Style

	// Inline fragment styles applied inside bubbles
	Bold   lipgloss.Style
	Italic lipgloss.Style
	Link   lipgloss.Style

	// ==========================================================================
	// INPUT AND ACTIVITY STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	Spinner          lipgloss.Style
	ThinkingText     lipgloss.Style
	TypingText       lipgloss.Style
	ErrorNotice      lipgloss.Style

	// ==========================================================================
	// SETTINGS MENU STYLES
	// ==========================================================================

	Menu             lipgloss.Style
	MenuItem         lipgloss.Style
	MenuItemSelected lipgloss.Style

	// ==========================================================================
	// TOAST AND STATUS STYLES
	// ==========================================================================

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme for name, resolving Auto.
func NewTheme(name Name) *Theme {
	resolved := name.Resolve()
	t := &Theme{Name: resolved, Palette: resolved.Palette()}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles from the palette.
func (t *Theme) initStyles() {
	p := t.Palette

	t.App = lipgloss.NewStyle().Foreground(p.TextPrimary)
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)
	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Italic(true)

	t.Launcher = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextInverse).
		Background(p.Accent).
		Padding(0, 2)
	t.LauncherHint = lipgloss.NewStyle().
		Foreground(p.Brand).
		Italic(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserBubbleFg).
		Background(p.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.UserBubbleBorder).
		Padding(0, 1)
	t.BotBubble = lipgloss.NewStyle().
		Foreground(p.BotBubbleFg).
		Background(p.BotBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.BotBubbleBorder).
		Padding(0, 1)
	t.SenderLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.TextSecondary)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(p.TextMuted)
	t.SkillChip = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.Brand).
		Padding(0, 1).
		MarginRight(1)

	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Italic = lipgloss.NewStyle().Italic(true)
	// ACCESSIBILITY: underline keeps links visible without color
	t.Link = lipgloss.NewStyle().Foreground(p.Link).Underline(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Brand).
		Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)
	t.Spinner = lipgloss.NewStyle().Foreground(p.Accent)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Italic(true)
	t.TypingText = lipgloss.NewStyle().
		Foreground(p.Accent).
		Italic(true)
	t.ErrorNotice = lipgloss.NewStyle().
		Foreground(p.Warning).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(p.Warning).
		PaddingLeft(1)

	// Settings menu
	t.Menu = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Background(p.SurfaceBright).
		Padding(0, 1)
	t.MenuItem = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		PaddingLeft(2)
	t.MenuItemSelected = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true).
		PaddingLeft(1).
		SetString(">")

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastSuccess = toast.Foreground(p.Success).BorderForeground(p.Success)
	t.ToastError = toast.Foreground(p.Error).BorderForeground(p.Error)
	t.ToastWarning = toast.Foreground(p.Warning).BorderForeground(p.Warning)
	t.ToastInfo = toast.Foreground(p.Info).BorderForeground(p.Info)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(p.Brand).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(p.TextMuted)
}

// =============================================================================
// SLOT LOOKUP
// =============================================================================

// Slot names a style within a theme.
type Slot string

const (
	SlotPanel        Slot = "panel"
	SlotHeader       Slot = "header"
	SlotLauncher     Slot = "launcher"
	SlotUserBubble   Slot = "user-bubble"
	SlotBotBubble    Slot = "bot-bubble"
	SlotTimestamp    Slot = "timestamp"
	SlotSkillChip    Slot = "skill-chip"
	SlotLink         Slot = "link"
	SlotErrorNotice  Slot = "error-notice"
	SlotToastSuccess Slot = "toast-success"
	SlotToastError   Slot = "toast-error"
)

var slotStyles = map[Slot]func(*Theme) lipgloss.Style{
	SlotPanel:        func(t *Theme) lipgloss.Style { return t.Panel },
	SlotHeader:       func(t *Theme) lipgloss.Style { return t.Header },
	SlotLauncher:     func(t *Theme) lipgloss.Style { return t.Launcher },
	SlotUserBubble:   func(t *Theme) lipgloss.Style { return t.UserBubble },
	SlotBotBubble:    func(t *Theme) lipgloss.Style { return t.BotBubble },
	SlotTimestamp:    func(t *Theme) lipgloss.Style { return t.Timestamp },
	SlotSkillChip:    func(t *Theme) lipgloss.Style { return t.SkillChip },
	SlotLink:         func(t *Theme) lipgloss.Style { return t.Link },
	SlotErrorNotice:  func(t *Theme) lipgloss.Style { return t.ErrorNotice },
	SlotToastSuccess: func(t *Theme) lipgloss.Style { return t.ToastSuccess },
	SlotToastError:   func(t *Theme) lipgloss.Style { return t.ToastError },
}

var (
	themeCacheMu sync.Mutex
	themeCache   = map[Name]*Theme{}
)

// Get returns the shared theme for name. Themes are immutable once built.
func Get(name Name) *Theme {
	if _, ok := ParseName(string(name)); !ok {
		name = Dark
	}
	name = name.Resolve()

	themeCacheMu.Lock()
	defer themeCacheMu.Unlock()
	if t, ok := themeCache[name]; ok {
		return t
	}
	t := NewTheme(name)
	themeCache[name] = t
	return t
}

// Lookup returns the style for slot in theme name. Unknown themes resolve to
// Dark; unknown slots return an empty style.
func Lookup(name Name, slot Slot) lipgloss.Style {
	fn, ok := slotStyles[slot]
	if !ok {
		return lipgloss.NewStyle()
	}
	return fn(Get(name))
}
