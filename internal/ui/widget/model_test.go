// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/store"
	"github.com/jeranaias/folio/internal/ui/components"
	"github.com/jeranaias/folio/internal/ui/styles"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type stubCompleter struct {
	reply string
	err   error
	hold  chan struct{}
}

func (s *stubCompleter) Complete(ctx context.Context, _ []cloud.ChatMessage) (string, error) {
	if s.hold != nil {
		select {
		case <-s.hold:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

type memClipboard struct {
	text string
	err  error
}

func (c *memClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fixture struct {
	engine *engine.Engine
	clock  *engine.ManualScheduler
	store  *store.Memory
	toasts *components.ToastManager
	clip   *memClipboard
	feed   *ChangeFeed
}

func newFixture(t *testing.T, c engine.Completer) *fixture {
	t.Helper()
	f := &fixture{
		clock:  engine.NewManualScheduler(),
		store:  store.NewMemory(),
		toasts: components.NewToastManager(),
		clip:   &memClipboard{},
		feed:   NewChangeFeed(),
	}
	f.engine = engine.New(engine.Options{
		Completer: c,
		Scheduler: f.clock,
		Clipboard: f.clip,
		Notifier:  f.toasts,
		OnChange:  f.feed.Notify,
	})
	return f
}

func (f *fixture) model() Model {
	return New(Options{
		Engine: f.engine,
		Feed:   f.feed,
		Store:  f.store,
		Toasts: f.toasts,
		Theme:  styles.Dark,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: k})
	return m
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	return m
}

// =============================================================================
// VISIBILITY AND FIRST INTERACTION
// =============================================================================

func TestWidget_StartsClosedWithHint(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := sized(t, f.model())

	assert.Equal(t, Closed, m.Visibility())
	assert.True(t, m.ShowsHint())
	assert.Contains(t, m.View(), "Chat with AI")
	assert.Contains(t, m.View(), "New here?")
}

func TestWidget_OpenPersistsInteractionOnce(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := sized(t, f.model())

	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, Open, m.Visibility())

	set, err := store.Bool(f.store, store.KeyInteracted)
	require.NoError(t, err)
	assert.True(t, set)

	// Closed again in the same session: no hint.
	m = press(t, m, tea.KeyEsc)
	assert.Equal(t, Closed, m.Visibility())
	assert.False(t, m.ShowsHint())

	// A later session reads the flag and suppresses the hint from the start.
	next := f.model()
	assert.False(t, next.ShowsHint())
}

func TestWidget_OpenShowsWelcome(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := sized(t, f.model())

	m = press(t, m, tea.KeyEnter)
	assert.True(t, m.snap.WelcomePending)
	assert.Contains(t, m.View(), "typing")

	f.clock.Advance(engine.DefaultTiming().Welcome)
	m, _ = update(t, m, EngineChangedMsg{})
	require.Len(t, m.snap.Messages, 1)
	assert.Contains(t, m.View(), "AI Assistant")
}

func TestWidget_StartOpen(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := New(Options{Engine: f.engine, Feed: f.feed, Store: f.store, StartOpen: true})

	m, _ = update(t, m, openMsg{})
	assert.Equal(t, Open, m.Visibility())
}

func TestWidget_QuitKeys(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := f.model()

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	m = press(t, m, tea.KeyEnter)
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

// =============================================================================
// SENDING
// =============================================================================

func openReady(t *testing.T, f *fixture) Model {
	t.Helper()
	m := press(t, sized(t, f.model()), tea.KeyEnter)
	f.clock.Advance(engine.DefaultTiming().Welcome)
	m, _ = update(t, m, EngineChangedMsg{})
	require.Len(t, m.snap.Messages, 1)
	return m
}

func TestWidget_SubmitRunsTurn(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "Hi!"})
	m := openReady(t, f)

	m.input.SetValue("hello")
	m = press(t, m, tea.KeyEnter)
	assert.Empty(t, m.InputValue())
	require.Len(t, m.snap.Messages, 2)
	assert.Equal(t, "hello", m.snap.Messages[1].Text())

	require.Eventually(t, func() bool { return f.engine.State() == engine.StateTyping },
		2*time.Second, time.Millisecond)
	f.clock.Advance(engine.DefaultTiming().TypingMax)
	m, _ = update(t, m, EngineChangedMsg{})

	require.Len(t, m.snap.Messages, 3)
	assert.Equal(t, "Hi!", m.snap.Messages[2].Text())
	assert.Equal(t, engine.StateIdle, m.snap.State)
	assert.Contains(t, m.View(), "Hi!")
}

func TestWidget_BlankSubmitIgnored(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "Hi!"})
	m := openReady(t, f)

	m.input.SetValue("   ")
	m = press(t, m, tea.KeyEnter)
	assert.Len(t, m.snap.Messages, 1)
	assert.Equal(t, engine.StateIdle, m.snap.State)
}

func TestWidget_SubmitWhileBusyKeepsText(t *testing.T) {
	c := &stubCompleter{reply: "later", hold: make(chan struct{})}
	defer close(c.hold)
	f := newFixture(t, c)
	m := openReady(t, f)

	m.input.SetValue("first")
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, engine.StateThinking, m.snap.State)
	assert.Contains(t, m.View(), "Thinking...")

	m.input.SetValue("second")
	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, "second", m.InputValue())
	assert.Len(t, m.snap.Messages, 2)
}

func TestWidget_CloseCancelsTurn(t *testing.T) {
	c := &stubCompleter{reply: "late", hold: make(chan struct{})}
	defer close(c.hold)
	f := newFixture(t, c)
	m := openReady(t, f)

	m.input.SetValue("question")
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, engine.StateThinking, m.snap.State)

	m = press(t, m, tea.KeyEsc)
	assert.Equal(t, Closed, m.Visibility())
	assert.Equal(t, engine.StateIdle, f.engine.State())
	assert.Len(t, f.engine.Snapshot().Messages, 2, "transcript is kept")
}

func TestWidget_FailureShowsNotice(t *testing.T) {
	f := newFixture(t, &stubCompleter{err: errors.New("boom")})
	m := openReady(t, f)

	m.input.SetValue("what are your skills")
	m = press(t, m, tea.KeyEnter)
	require.Eventually(t, func() bool { return f.engine.State() == engine.StateTyping },
		2*time.Second, time.Millisecond)
	f.clock.Advance(engine.DefaultTiming().Fallback)
	m, _ = update(t, m, EngineChangedMsg{})

	require.Len(t, m.snap.Messages, 3)
	assert.Equal(t, engine.FallbackSkills, m.snap.Messages[2].Skills())
	view := m.View()
	assert.Contains(t, view, "saved answer")
	assert.Contains(t, view, "Tailwind CSS")
}

// =============================================================================
// SETTINGS MENU
// =============================================================================

func TestWidget_MenuToggleThemePersists(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := openReady(t, f)

	m = press(t, m, tea.KeyCtrlS)
	require.True(t, m.MenuOpen())
	assert.Contains(t, m.View(), "Switch to light theme")

	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	assert.False(t, m.MenuOpen())
	assert.Equal(t, styles.Light, m.ThemeName())

	saved, ok, err := f.store.Get(store.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "light", saved)

	// The saved theme wins over the configured one next session.
	assert.Equal(t, styles.Light, f.model().ThemeName())
}

func TestWidget_MenuCopy(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := openReady(t, f)

	m = press(t, m, tea.KeyCtrlS)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)

	assert.True(t, strings.HasPrefix(f.clip.text, "AI Assistant: "))
	toasts := f.toasts.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, components.ToastKindSuccess, toasts[0].Kind)
	assert.Contains(t, m.View(), "Chat copied to clipboard")
}

func TestWidget_MenuCopyFailureToast(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	f.clip.err = errors.New("no clipboard")
	m := openReady(t, f)

	m = press(t, m, tea.KeyCtrlS)
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)

	toasts := f.toasts.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, components.ToastKindError, toasts[0].Kind)
	assert.Equal(t, "Failed to copy chat", toasts[0].Message)
}

func TestWidget_MenuClear(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "Hi!"})
	m := openReady(t, f)

	m = press(t, m, tea.KeyCtrlS)
	m = press(t, m, tea.KeyEnter)
	assert.Empty(t, m.snap.Messages)

	f.clock.Advance(engine.DefaultTiming().Clear)
	m, _ = update(t, m, EngineChangedMsg{})
	require.Len(t, m.snap.Messages, 1)
	assert.Equal(t, f.engine.Profile().ClearedText(), m.snap.Messages[0].Text())
}

func TestWidget_MenuEscapeOnlyClosesMenu(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := openReady(t, f)

	m = press(t, m, tea.KeyCtrlS)
	m = press(t, m, tea.KeyEsc)
	assert.False(t, m.MenuOpen())
	assert.Equal(t, Open, m.Visibility())
}

func TestWidget_ThemeChangedMsgDoesNotPersist(t *testing.T) {
	f := newFixture(t, &stubCompleter{reply: "ok"})
	m := f.model()

	m, _ = update(t, m, ThemeChangedMsg{Name: styles.Light})
	assert.Equal(t, styles.Light, m.ThemeName())

	_, ok, err := f.store.Get(store.KeyTheme)
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// CHANGE FEED
// =============================================================================

func TestChangeFeed_Coalesces(t *testing.T) {
	feed := NewChangeFeed()
	feed.Notify()
	feed.Notify()
	feed.Notify()

	assert.Equal(t, EngineChangedMsg{}, feed.wait()())
	select {
	case <-feed.ch:
		t.Fatal("notifications should coalesce")
	default:
	}
}
