// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/model"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// fakeCompleter answers with a fixed reply or error. When hold is non-nil it
// waits for hold to close (or the context to end) before answering.
type fakeCompleter struct {
	reply string
	err   error
	hold  chan struct{}

	mu       sync.Mutex
	calls    [][]cloud.ChatMessage
	returned chan error
}

func newFake(reply string, err error) *fakeCompleter {
	return &fakeCompleter{reply: reply, err: err, returned: make(chan error, 8)}
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []cloud.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			f.returned <- ctx.Err()
			return "", ctx.Err()
		}
	}
	f.returned <- f.err
	return f.reply, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (n *fakeNotifier) NotifySuccess(text string) { n.successes = append(n.successes, text) }
func (n *fakeNotifier) NotifyError(text string)   { n.errors = append(n.errors, text) }

type harness struct {
	engine  *Engine
	clock   *ManualScheduler
	changes atomic.Int32
}

func newHarness(t *testing.T, c Completer) *harness {
	t.Helper()
	h := &harness{clock: NewManualScheduler()}
	h.engine = New(Options{
		Completer: c,
		Scheduler: h.clock,
		OnChange:  func() { h.changes.Add(1) },
	})
	return h
}

// openAndWelcome opens the engine and lets the welcome message land.
func (h *harness) openAndWelcome(t *testing.T) {
	t.Helper()
	h.engine.Open()
	h.clock.Advance(DefaultTiming().Welcome)
	require.Len(t, h.engine.Snapshot().Messages, 1)
}

func (h *harness) waitState(t *testing.T, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.engine.State() == want },
		2*time.Second, time.Millisecond, "engine never reached %s", want)
}

// finishTurn waits for the reveal to be scheduled and then runs it.
func (h *harness) finishTurn(t *testing.T) {
	t.Helper()
	h.waitState(t, StateTyping)
	h.clock.Advance(time.Minute)
	require.Equal(t, StateIdle, h.engine.State())
}

func texts(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text()
	}
	return out
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen_AppendsWelcomeAfterDelay(t *testing.T) {
	h := newHarness(t, newFake("", nil))

	h.engine.Open()
	snap := h.engine.Snapshot()
	assert.Empty(t, snap.Messages, "welcome must wait for the display delay")
	assert.True(t, snap.WelcomePending)

	h.clock.Advance(DefaultTiming().Welcome - time.Millisecond)
	assert.Empty(t, h.engine.Snapshot().Messages)

	h.clock.Advance(time.Millisecond)
	snap = h.engine.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, model.SenderBot, snap.Messages[0].Sender)
	assert.Equal(t, DefaultProfile().WelcomeText(), snap.Messages[0].Text())
	assert.False(t, snap.WelcomePending)
	assert.Equal(t, StateIdle, snap.State)
}

func TestOpen_Idempotent(t *testing.T) {
	h := newHarness(t, newFake("", nil))

	h.engine.Open()
	h.engine.Open()
	assert.Equal(t, 1, h.clock.Pending(), "second Open should not schedule another welcome")

	h.clock.Advance(time.Second)
	h.engine.Open()
	h.clock.Advance(time.Second)
	assert.Len(t, h.engine.Snapshot().Messages, 1)
}

func TestOpen_SendDuringDelayDropsWelcome(t *testing.T) {
	fake := newFake("Hi!", nil)
	h := newHarness(t, fake)

	h.engine.Open()
	require.NoError(t, h.engine.Send("hello"))
	h.finishTurn(t)

	assert.Equal(t, []string{"hello", "Hi!"}, texts(h.engine.Snapshot().Messages))
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_AppendsUserMessageSynchronously(t *testing.T) {
	fake := newFake("ok", nil)
	fake.hold = make(chan struct{})
	defer close(fake.hold)
	h := newHarness(t, fake)
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("  what are you working on?  "))

	snap := h.engine.Snapshot()
	require.Len(t, snap.Messages, 2)
	last := snap.Messages[1]
	assert.Equal(t, model.SenderUser, last.Sender)
	assert.Equal(t, "  what are you working on?  ", last.Text(), "user text is kept verbatim")
	assert.Equal(t, StateThinking, snap.State)
}

func TestSend_RejectsBlankInput(t *testing.T) {
	h := newHarness(t, newFake("ok", nil))
	h.openAndWelcome(t)
	before := h.engine.Snapshot()

	for _, input := range []string{"", "   ", "\n\t "} {
		err := h.engine.Send(input)
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", input)
	}

	after := h.engine.Snapshot()
	assert.Equal(t, len(before.Messages), len(after.Messages))
	assert.Equal(t, StateIdle, after.State)
}

func TestSend_RejectsWhileThinking(t *testing.T) {
	fake := newFake("ok", nil)
	fake.hold = make(chan struct{})
	h := newHarness(t, fake)

	require.NoError(t, h.engine.Send("first"))
	assert.ErrorIs(t, h.engine.Send("second"), ErrBusy)
	assert.Len(t, h.engine.Snapshot().Messages, 1)

	close(fake.hold)
	h.finishTurn(t)
	assert.Equal(t, 1, fake.callCount(), "only one request may be issued")
}

func TestSend_RejectsWhileTyping(t *testing.T) {
	fake := newFake("a reply", nil)
	h := newHarness(t, fake)

	require.NoError(t, h.engine.Send("first"))
	h.waitState(t, StateTyping)

	assert.ErrorIs(t, h.engine.Send("second"), ErrBusy)
	assert.Equal(t, []string{"first"}, texts(h.engine.Snapshot().Messages))
}

func TestSend_Payload(t *testing.T) {
	fake := newFake("Hi!", nil)
	h := newHarness(t, fake)
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("hello"))
	h.finishTurn(t)
	require.NoError(t, h.engine.Send("what are your skills"))
	h.finishTurn(t)

	require.Equal(t, 2, fake.callCount())
	payload := fake.calls[1]
	roles := make([]string, len(payload))
	for i, m := range payload {
		roles[i] = m.Role
	}
	assert.Equal(t, []string{"system", "assistant", "user", "assistant", "user"}, roles)
	assert.Equal(t, SystemPrompt(DefaultProfile()), payload[0].Content)
	assert.Equal(t, "what are your skills", payload[4].Content)
}

func TestSend_ReplyScenario(t *testing.T) {
	h := newHarness(t, newFake("Hi!", nil))
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("hello"))
	h.waitState(t, StateTyping)
	assert.Len(t, h.engine.Snapshot().Messages, 2, "reply waits for the typing delay")

	h.clock.Advance(DefaultTiming().TypingDelay("Hi!"))

	snap := h.engine.Snapshot()
	assert.Equal(t, []string{DefaultProfile().WelcomeText(), "hello", "Hi!"}, texts(snap.Messages))
	assert.Equal(t, model.SenderBot, snap.Messages[2].Sender)
	assert.Equal(t, StateIdle, snap.State)
	assert.NoError(t, snap.Err)
}

func TestSend_FailureScenario(t *testing.T) {
	h := newHarness(t, newFake("", cloud.ErrNotConfigured))
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("what are your skills"))
	h.waitState(t, StateTyping)

	snap := h.engine.Snapshot()
	assert.ErrorIs(t, snap.Err, cloud.ErrNotConfigured, "error indicator is raised before the fallback lands")
	assert.Len(t, snap.Messages, 2)

	h.clock.Advance(DefaultTiming().Fallback)

	snap = h.engine.Snapshot()
	require.Len(t, snap.Messages, 3, "exactly one fallback message")
	last := snap.Messages[2]
	assert.Equal(t, model.SenderBot, last.Sender)
	assert.Equal(t, []string{"React", "Node.js", "MongoDB", "Express", "TypeScript", "Tailwind CSS"}, last.Skills())
	assert.Equal(t, StateIdle, snap.State)
}

func TestSend_ErrorClearedOnNextSuccess(t *testing.T) {
	fake := newFake("", errors.New("boom"))
	h := newHarness(t, fake)

	require.NoError(t, h.engine.Send("hello"))
	h.finishTurn(t)
	require.Error(t, h.engine.Snapshot().Err)

	fake.err = nil
	fake.reply = "back online"
	require.NoError(t, h.engine.Send("hello again"))
	h.waitState(t, StateTyping)
	assert.NoError(t, h.engine.Snapshot().Err)
	h.clock.Advance(time.Minute)

	assert.Equal(t, "back online", texts(h.engine.Snapshot().Messages)[3])
}

func TestSend_NeverBothReplyAndFallback(t *testing.T) {
	for _, tc := range []struct {
		name  string
		reply string
		err   error
	}{
		{"success", "remote says hi", nil},
		{"failure", "", errors.New("status 500")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, newFake(tc.reply, tc.err))
			require.NoError(t, h.engine.Send("hello"))
			h.finishTurn(t)

			msgs := h.engine.Snapshot().Messages
			bots := 0
			for _, m := range msgs {
				if m.Sender == model.SenderBot {
					bots++
				}
			}
			assert.Equal(t, 1, bots)
		})
	}
}

// =============================================================================
// CLEAR / CANCEL
// =============================================================================

func TestClear_FromIdle(t *testing.T) {
	h := newHarness(t, newFake("Hi!", nil))
	h.openAndWelcome(t)
	require.NoError(t, h.engine.Send("hello"))
	h.finishTurn(t)

	h.engine.Clear()
	snap := h.engine.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Equal(t, StateIdle, snap.State)

	h.clock.Advance(DefaultTiming().Clear)
	snap = h.engine.Snapshot()
	assert.Equal(t, []string{DefaultProfile().ClearedText()}, texts(snap.Messages))
	assert.Equal(t, StateIdle, snap.State)
}

func TestClear_DuringThinkingDiscardsResult(t *testing.T) {
	fake := newFake("late reply", nil)
	fake.hold = make(chan struct{})
	h := newHarness(t, fake)
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("hello"))
	h.engine.Clear()
	assert.Equal(t, StateIdle, h.engine.State(), "clear resets state immediately")

	select {
	case err := <-fake.returned:
		assert.ErrorIs(t, err, context.Canceled, "clear cancels the in-flight request")
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
	close(fake.hold)

	// Give the abandoned turn a chance to misbehave.
	assert.Never(t, func() bool { return h.engine.State() != StateIdle }, 50*time.Millisecond, 5*time.Millisecond)
	h.clock.Advance(time.Minute)

	snap := h.engine.Snapshot()
	assert.Equal(t, []string{DefaultProfile().ClearedText()}, texts(snap.Messages))
	assert.Equal(t, StateIdle, snap.State)
}

func TestClear_DuringTypingDropsReveal(t *testing.T) {
	h := newHarness(t, newFake("Hi!", nil))
	require.NoError(t, h.engine.Send("hello"))
	h.waitState(t, StateTyping)

	h.engine.Clear()
	h.clock.Advance(time.Minute)

	assert.Equal(t, []string{DefaultProfile().ClearedText()}, texts(h.engine.Snapshot().Messages))
}

func TestClear_ResetsErrorIndicator(t *testing.T) {
	h := newHarness(t, newFake("", errors.New("offline")))
	require.NoError(t, h.engine.Send("hello"))
	h.finishTurn(t)
	require.Error(t, h.engine.Snapshot().Err)

	h.engine.Clear()
	assert.NoError(t, h.engine.Snapshot().Err)
}

func TestCancel_KeepsTranscriptAndDiscardsTurn(t *testing.T) {
	fake := newFake("Hi!", nil)
	fake.hold = make(chan struct{})
	h := newHarness(t, fake)
	h.openAndWelcome(t)

	require.NoError(t, h.engine.Send("hello"))
	h.engine.Cancel()
	<-fake.returned
	close(fake.hold)
	h.clock.Advance(time.Minute)

	snap := h.engine.Snapshot()
	assert.Equal(t, []string{DefaultProfile().WelcomeText(), "hello"}, texts(snap.Messages))
	assert.Equal(t, StateIdle, snap.State)

	// The engine accepts a new turn afterwards.
	fake.hold = nil
	require.NoError(t, h.engine.Send("hello again"))
	h.finishTurn(t)
	assert.Equal(t, "Hi!", texts(h.engine.Snapshot().Messages)[3])
}

func TestCancel_PendingWelcomeReschedulesOnReopen(t *testing.T) {
	h := newHarness(t, newFake("", nil))
	h.engine.Open()
	h.engine.Cancel()
	h.clock.Advance(time.Minute)
	assert.Empty(t, h.engine.Snapshot().Messages)

	h.engine.Open()
	h.clock.Advance(time.Minute)
	assert.Len(t, h.engine.Snapshot().Messages, 1)
}

func TestCancel_IdleIsNoop(t *testing.T) {
	h := newHarness(t, newFake("", nil))
	before := h.changes.Load()
	h.engine.Cancel()
	assert.Equal(t, before, h.changes.Load())
}

// =============================================================================
// COPY
// =============================================================================

func TestCopyTranscript(t *testing.T) {
	clip := &fakeClipboard{}
	notes := &fakeNotifier{}
	clock := NewManualScheduler()
	e := New(Options{
		Completer: newFake("Hi!", nil),
		Scheduler: clock,
		Clipboard: clip,
		Notifier:  notes,
	})
	e.Open()
	clock.Advance(time.Second)
	require.NoError(t, e.Send("hello"))
	require.Eventually(t, func() bool { return e.State() == StateTyping }, 2*time.Second, time.Millisecond)
	clock.Advance(time.Minute)
	stateBefore := e.Snapshot()

	require.NoError(t, e.CopyTranscript())

	entries := strings.Split(clip.text, "\n\n")
	require.Len(t, entries, 3)
	assert.Equal(t, "AI Assistant: "+DefaultProfile().WelcomeText(), entries[0])
	assert.Equal(t, "You: hello", entries[1])
	assert.Equal(t, "AI Assistant: Hi!", entries[2])
	assert.Equal(t, []string{"Chat copied to clipboard"}, notes.successes)
	assert.Equal(t, stateBefore, e.Snapshot(), "copy must not change engine state")
}

func TestCopyTranscript_Failure(t *testing.T) {
	notes := &fakeNotifier{}
	e := New(Options{
		Completer: newFake("", nil),
		Clipboard: &fakeClipboard{err: errors.New("no display")},
		Notifier:  notes,
	})

	assert.Error(t, e.CopyTranscript())
	assert.Equal(t, []string{"Failed to copy chat"}, notes.errors)
	assert.Empty(t, notes.successes)
}

func TestCopyTranscript_NoClipboard(t *testing.T) {
	e := New(Options{Completer: newFake("", nil)})
	assert.ErrorIs(t, e.CopyTranscript(), ErrNoClipboard)
}

// =============================================================================
// TIMING / WAITING
// =============================================================================

func TestTypingDelay(t *testing.T) {
	timing := DefaultTiming()
	assert.Equal(t, timing.TypingMin, timing.TypingDelay("Hi!"))
	assert.Equal(t, 50*timing.TypingPerChar, timing.TypingDelay(strings.Repeat("x", 50)))
	assert.Equal(t, timing.TypingMax, timing.TypingDelay(strings.Repeat("x", 10000)))
	assert.Equal(t, 50*timing.TypingPerChar, timing.TypingDelay(strings.Repeat("é", 50)), "length counts runes")
}

func TestWaitIdle(t *testing.T) {
	h := newHarness(t, newFake("Hi!", nil))
	require.NoError(t, h.engine.WaitIdle(context.Background()), "fresh engine is idle")

	require.NoError(t, h.engine.Send("hello"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, h.engine.WaitIdle(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- h.engine.WaitIdle(context.Background()) }()
	h.finishTurn(t)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("WaitIdle did not return after the turn finished")
	}
}

func TestWaitIdle_WaitsForWelcome(t *testing.T) {
	h := newHarness(t, newFake("", nil))
	h.engine.Open()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, h.engine.WaitIdle(ctx), "pending welcome is not idle")

	h.clock.Advance(time.Second)
	assert.NoError(t, h.engine.WaitIdle(context.Background()))
}

func TestOnChangeFires(t *testing.T) {
	h := newHarness(t, newFake("Hi!", nil))
	h.engine.Open()
	h.clock.Advance(time.Second)
	assert.GreaterOrEqual(t, h.changes.Load(), int32(2), "open and welcome both notify")
}

func TestNew_RequiresCompleter(t *testing.T) {
	assert.Panics(t, func() { New(Options{}) })
}
