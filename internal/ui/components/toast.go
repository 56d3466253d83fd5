// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/folio/internal/ui/styles"
	"github.com/jeranaias/folio/internal/util"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind selects a toast's color and lifetime.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
	// ToastKindWarning is a warning toast
	ToastKindWarning
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status and success toasts.
const DefaultToastDuration = 3 * time.Second

// ErrorToastDuration is how long an error toast stays up.
const ErrorToastDuration = 5 * time.Second

// WarningToastDuration is how long a warning toast stays up.
const WarningToastDuration = 4 * time.Second

// DefaultMaxToasts is the number of toasts visible at once.
const DefaultMaxToasts = 5

// ToastTickInterval is how often expired toasts are swept.
const ToastTickInterval = 100 * time.Millisecond

// Toast is one ephemeral notification. ID is the creation time in unix
// nanoseconds, bumped when two toasts share a clock reading.
type Toast struct {
	ID        int64
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// durationFor returns the default lifetime of a kind.
func durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastKindError:
		return ErrorToastDuration
	case ToastKindWarning:
		return WarningToastDuration
	default:
		return DefaultToastDuration
	}
}

// ExpiredAt reports whether the toast is dismissed at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// RemainingAt returns how much time is left before auto-dismiss.
func (t Toast) RemainingAt(now time.Time) time.Duration {
	remaining := t.Duration - now.Sub(t.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager manages multiple toast notifications. It is safe for
// concurrent use; the engine notifies from its own goroutines.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	lastID    int64
	maxToasts int
	now       func() time.Time
}

// NewToastManager returns an empty manager showing at most DefaultMaxToasts.
func NewToastManager() *ToastManager {
	return &ToastManager{
		maxToasts: DefaultMaxToasts,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (m *ToastManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Add creates a toast of kind and returns its ID.
func (m *ToastManager) Add(kind ToastKind, message string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := m.now()
	id := created.UnixNano()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id

	toast := Toast{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: created,
		Duration:  durationFor(kind),
	}

	// Newest first
	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return id
}

// AddError queues an error toast.
func (m *ToastManager) AddError(message string) int64 {
	return m.Add(ToastKindError, message)
}

// AddWarning queues a warning toast.
func (m *ToastManager) AddWarning(message string) int64 {
	return m.Add(ToastKindWarning, message)
}

// AddStatus queues a neutral toast.
func (m *ToastManager) AddStatus(message string) int64 {
	return m.Add(ToastKindStatus, message)
}

// AddSuccess queues a success toast.
func (m *ToastManager) AddSuccess(message string) int64 {
	return m.Add(ToastKindSuccess, message)
}

// NotifySuccess shows a success toast.
func (m *ToastManager) NotifySuccess(message string) { m.AddSuccess(message) }

// NotifyError shows an error toast.
func (m *ToastManager) NotifyError(message string) { m.AddError(message) }

// Dismiss removes a toast by ID.
func (m *ToastManager) Dismiss(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// TickToasts removes expired toasts and returns the remaining ones.
func (m *ToastManager) TickToasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.ExpiredAt(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active

	result := make([]Toast, len(m.toasts))
	copy(result, m.toasts)
	return result
}

// Toasts returns a copy of the current toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Toast, len(m.toasts))
	copy(result, m.toasts)
	return result
}

// HasToasts reports whether anything is on screen.
func (m *ToastManager) HasToasts() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts) > 0
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to sweep expired toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(ToastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast draws one toast.
func RenderToast(toast Toast, width int, theme *styles.Theme) string {
	if theme == nil {
		theme = styles.Get(styles.Dark)
	}
	maxWidth := 48
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var style lipgloss.Style
	var icon string
	switch toast.Kind {
	case ToastKindError:
		style, icon = theme.ToastError, styles.StatusIndicators.Error
	case ToastKindWarning:
		style, icon = theme.ToastWarning, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		style, icon = theme.ToastSuccess, styles.StatusIndicators.Success
	default:
		style, icon = theme.ToastInfo, styles.StatusIndicators.Info
	}

	textWidth := maxWidth - style.GetHorizontalFrameSize() - util.StringWidth(icon) - 1
	lines := util.WrapWidth(toast.Message, textWidth)
	content := icon + " " + strings.Join(lines, "\n"+strings.Repeat(" ", util.StringWidth(icon)+1))

	return style.Render(content)
}

// RenderToastStack renders toasts stacked vertically, newest on top,
// aligned to the right edge of width.
func RenderToastStack(toasts []Toast, width int, theme *styles.Theme) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(toast, width, theme))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
