// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/logging"
	"github.com/jeranaias/folio/internal/store"
	"github.com/jeranaias/folio/internal/ui/components"
	"github.com/jeranaias/folio/internal/ui/styles"
)

// =============================================================================
// VISIBILITY
// =============================================================================

// Visibility is whether the chat panel is shown.
type Visibility int

const (
	// Closed shows only the launcher.
	Closed Visibility = iota
	// Open shows the chat panel.
	Open
)

func (v Visibility) String() string {
	if v == Open {
		return "open"
	}
	return "closed"
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures New. Engine is required.
type Options struct {
	Engine *engine.Engine

	// Feed delivers engine changes. It must be the feed whose Notify was
	// passed to the engine as OnChange.
	Feed *ChangeFeed

	// Store persists the first-interaction flag and the theme. Nil means an
	// in-memory store.
	Store store.Store

	// Toasts must be the engine's Notifier so copy results show up.
	Toasts *components.ToastManager

	// Theme is used when the store holds no saved theme.
	Theme styles.Name

	// StartOpen opens the panel immediately.
	StartOpen bool

	Logger *logging.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// activity is a spinner that only ticks while its condition holds.
type activity struct {
	spinner spinner.Model
	ticking bool
}

// Model is the Bubble Tea model for the chat widget.
type Model struct {
	engine *engine.Engine
	feed   *ChangeFeed
	store  store.Store
	toasts *components.ToastManager
	logger *logging.Logger

	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	visibility Visibility
	startOpen  bool

	// interacted is the persisted flag as read at startup. marked records
	// that this session already wrote it.
	interacted bool
	marked     bool
	opened     bool

	menu menuState

	input    textinput.Model
	viewport viewport.Model
	thinking activity
	typing   activity

	snap       engine.Snapshot
	contentKey string

	width  int
	height int
}

// New creates the widget model. It panics if opts.Engine is nil.
func New(opts Options) Model {
	if opts.Engine == nil {
		panic("widget: Engine is required")
	}
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Toasts == nil {
		opts.Toasts = components.NewToastManager()
	}
	logger := logging.OrNop(opts.Logger).Named("widget")

	interacted, err := store.Bool(opts.Store, store.KeyInteracted)
	if err != nil {
		logger.Warn("read interaction flag failed", "error", err)
	}

	themeName := opts.Theme
	if saved, ok, err := opts.Store.Get(store.KeyTheme); err != nil {
		logger.Warn("read saved theme failed", "error", err)
	} else if ok {
		if name, valid := styles.ParseName(saved); valid {
			themeName = name
		}
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask me anything..."
	ti.CharLimit = 1000

	m := Model{
		engine:     opts.Engine,
		feed:       opts.Feed,
		store:      opts.Store,
		toasts:     opts.Toasts,
		logger:     logger,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		visibility: Closed,
		startOpen:  opts.StartOpen,
		interacted: interacted,
		input:      ti,
		viewport:   viewport.New(80, 20),
		thinking:   activity{spinner: spinner.New(spinner.WithSpinner(styles.LineSpinner.Spinner()))},
		typing:     activity{spinner: spinner.New(spinner.WithSpinner(styles.DotsSpinner.Spinner()))},
		snap:       opts.Engine.Snapshot(),
	}
	m.applyTheme(themeName)
	return m
}

// Visibility returns whether the panel is open.
func (m Model) Visibility() Visibility {
	return m.visibility
}

// ThemeName returns the active theme.
func (m Model) ThemeName() styles.Name {
	return m.theme.Name
}

// ShowsHint reports whether the onboarding hint is visible.
func (m Model) ShowsHint() bool {
	return m.visibility == Closed && !m.interacted && !m.opened
}

// MenuOpen reports whether the settings menu is showing.
func (m Model) MenuOpen() bool {
	return m.menu.open
}

// InputValue returns the text in the input box.
func (m Model) InputValue() string {
	return m.input.Value()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the engine listener and the toast ticker.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTickCmd()}
	if m.feed != nil {
		cmds = append(cmds, m.feed.wait())
	}
	if m.startOpen {
		cmds = append(cmds, func() tea.Msg { return openMsg{} })
	}
	return tea.Batch(cmds...)
}

// openMsg opens the panel from Init.
type openMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			m.engine.Cancel()
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	case openMsg:
		cmds = append(cmds, m.open())

	case EngineChangedMsg:
		if m.feed != nil {
			cmds = append(cmds, m.feed.wait())
		}

	case ThemeChangedMsg:
		m.applyTheme(msg.Name)

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		cmds = append(cmds, components.ToastTickCmd())

	case spinner.TickMsg:
		cmds = append(cmds, m.tickActivity(msg))

	default:
		if m.visibility == Open {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.refresh()
	cmds = append(cmds, m.startActivity())
	m.layout()
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey dispatches a key press. It reports quit=true when the program
// should exit.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return nil, true
	}

	if m.visibility == Closed {
		switch {
		case key.Matches(msg, m.keys.Open):
			return m.open(), false
		case key.Matches(msg, m.keys.Quit):
			return nil, true
		}
		return nil, false
	}

	if m.menu.open {
		return m.handleMenuKey(msg), false
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		m.close()
		return nil, false
	case key.Matches(msg, m.keys.Settings):
		m.menu = menuState{open: true}
		return nil, false
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return nil, false
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return nil, false
	case key.Matches(msg, m.keys.Submit):
		m.submit()
		return nil, false
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd, false
}

// open shows the panel, records the first interaction and starts the
// welcome.
func (m *Model) open() tea.Cmd {
	if m.visibility == Open {
		return nil
	}
	m.visibility = Open
	m.opened = true

	if !m.interacted && !m.marked {
		m.marked = true
		if _, err := store.MarkOnce(m.store, store.KeyInteracted); err != nil {
			m.logger.Warn("persist interaction flag failed", "error", err)
		}
	}

	m.engine.Open()
	m.input.Focus()
	return textinput.Blink
}

// close hides the panel and abandons any in-flight turn.
func (m *Model) close() {
	m.visibility = Closed
	m.menu = menuState{}
	m.input.Blur()
	m.engine.Cancel()
}

// submit forwards the input to the engine. Blank input is dropped; input
// typed while a turn is running stays in the box.
func (m *Model) submit() {
	err := m.engine.Send(m.input.Value())
	switch {
	case err == nil, errors.Is(err, engine.ErrEmptyInput):
		m.input.Reset()
	case errors.Is(err, engine.ErrBusy):
		// Keep the text for the next turn.
	default:
		m.logger.Warn("send failed", "error", err)
	}
}

// =============================================================================
// THEME
// =============================================================================

// applyTheme switches styles without persisting.
func (m *Model) applyTheme(name styles.Name) {
	m.theme = styles.Get(name)

	m.input.PromptStyle = m.theme.InputPrompt
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
	m.input.TextStyle = m.theme.App
	m.thinking.spinner.Style = m.theme.Spinner
	m.typing.spinner.Style = m.theme.TypingText

	m.help.Styles.ShortKey = m.theme.ShortcutKey
	m.help.Styles.ShortDesc = m.theme.ShortcutDesc
	m.help.Styles.ShortSeparator = m.theme.ShortcutDesc

	// Force a transcript re-render.
	m.contentKey = ""
}

// toggleTheme flips the theme and saves the choice.
func (m *Model) toggleTheme() {
	next := m.theme.Name.Toggle()
	m.applyTheme(next)
	if err := m.store.Set(store.KeyTheme, string(next)); err != nil {
		m.logger.Warn("persist theme failed", "theme", string(next), "error", err)
		m.toasts.AddWarning("Could not save theme")
	}
}

// =============================================================================
// ENGINE STATE
// =============================================================================

// refresh pulls a new snapshot and re-renders the transcript when it
// changed.
func (m *Model) refresh() {
	m.snap = m.engine.Snapshot()

	lastID := ""
	if n := len(m.snap.Messages); n > 0 {
		lastID = m.snap.Messages[n-1].ID
	}
	ck := fmt.Sprintf("%d/%s/%d/%s", len(m.snap.Messages), lastID, m.width, m.theme.Name)
	if ck == m.contentKey {
		return
	}
	m.contentKey = ck
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// typingShown reports whether the typing indicator is visible.
func (m Model) typingShown() bool {
	return m.snap.State == engine.StateTyping || (m.snap.WelcomePending && m.visibility == Open)
}

// startActivity starts a spinner whose condition just became true.
func (m *Model) startActivity() tea.Cmd {
	var cmds []tea.Cmd
	if m.snap.State == engine.StateThinking && !m.thinking.ticking {
		m.thinking.ticking = true
		cmds = append(cmds, m.thinking.spinner.Tick)
	}
	if m.typingShown() && !m.typing.ticking {
		m.typing.ticking = true
		cmds = append(cmds, m.typing.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// tickActivity advances the spinner the tick belongs to, or lets it stop.
func (m *Model) tickActivity(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.ID {
	case m.thinking.spinner.ID():
		if m.snap.State != engine.StateThinking {
			m.thinking.ticking = false
			return nil
		}
		m.thinking.spinner, cmd = m.thinking.spinner.Update(msg)
	case m.typing.spinner.ID():
		if !m.typingShown() {
			m.typing.ticking = false
			return nil
		}
		m.typing.spinner, cmd = m.typing.spinner.Update(msg)
	}
	return cmd
}
