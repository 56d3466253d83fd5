// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/logging"
	"github.com/jeranaias/folio/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is the request state of the engine. Exactly one holds at a time.
type State int

const (
	// StateIdle means no turn is outstanding.
	StateIdle State = iota
	// StateThinking means the completion request is in flight.
	StateThinking
	// StateTyping means a reply (remote or fallback) is being revealed.
	StateTyping
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateThinking:
		return "thinking"
	case StateTyping:
		return "typing"
	default:
		return "unknown"
	}
}

// Busy reports whether a turn is outstanding.
func (s State) Busy() bool {
	return s != StateIdle
}

// Errors returned by Send.
var (
	// ErrEmptyInput is returned when the text is empty after trimming.
	ErrEmptyInput = errors.New("message is empty")

	// ErrBusy is returned when a turn is already thinking or typing.
	ErrBusy = errors.New("assistant is still answering")

	// ErrNoClipboard is returned by CopyTranscript when no clipboard is wired.
	ErrNoClipboard = errors.New("clipboard unavailable")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Completer produces a reply for a prepared message list. *cloud.Client
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []cloud.ChatMessage) (string, error)
}

// Clipboard receives the serialized transcript.
type Clipboard interface {
	WriteAll(text string) error
}

// Notifier reports the outcome of user actions that have no transcript
// effect (copying).
type Notifier interface {
	NotifySuccess(text string)
	NotifyError(text string)
}

// Timing holds the artificial display delays.
type Timing struct {
	Welcome       time.Duration
	Clear         time.Duration
	Fallback      time.Duration
	TypingPerChar time.Duration
	TypingMin     time.Duration
	TypingMax     time.Duration
}

// DefaultTiming returns the stock delays.
func DefaultTiming() Timing {
	return Timing{
		Welcome:       600 * time.Millisecond,
		Clear:         300 * time.Millisecond,
		Fallback:      1 * time.Second,
		TypingPerChar: 15 * time.Millisecond,
		TypingMin:     500 * time.Millisecond,
		TypingMax:     2500 * time.Millisecond,
	}
}

// TypingDelay returns the reveal delay for a reply: proportional to its
// length in runes, clamped to [TypingMin, TypingMax].
func (t Timing) TypingDelay(text string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(text)) * t.TypingPerChar
	if d < t.TypingMin {
		d = t.TypingMin
	}
	if t.TypingMax > 0 && d > t.TypingMax {
		d = t.TypingMax
	}
	return d
}

// Options configures New. Completer is required; every other field has a
// usable default.
type Options struct {
	Completer Completer
	Profile   Profile
	Timing    Timing
	Scheduler Scheduler
	Clipboard Clipboard
	Notifier  Notifier
	Logger    *logging.Logger

	// OnChange is called after every observable change, outside the lock.
	// The terminal shell uses it to wake the Bubble Tea program.
	OnChange func()
}

// Snapshot is a read-only view of the engine for renderers.
type Snapshot struct {
	Messages []model.Message
	State    State

	// Err is the last remote failure. It is set when a turn fell back to a
	// canned answer and cleared by the next successful reply or by Clear.
	Err error

	// WelcomePending is true while a welcome message is scheduled.
	WelcomePending bool
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine owns the transcript and the request state machine. It is safe for
// concurrent use.
type Engine struct {
	completer Completer
	profile   Profile
	timing    Timing
	scheduler Scheduler
	clipboard Clipboard
	notifier  Notifier
	logger    *logging.Logger
	onChange  func()

	mu             sync.Mutex
	transcript     model.Transcript
	state          State
	gen            uint64
	lastErr        error
	welcomePending bool
	cancelFunc     context.CancelFunc
	timerSeq       uint64
	timers         map[uint64]Timer
	settled        chan struct{} // closed while idle with no timers pending
}

// New creates an engine. It panics if opts.Completer is nil.
func New(opts Options) *Engine {
	if opts.Completer == nil {
		panic("engine: Completer is required")
	}
	if opts.Profile == (Profile{}) {
		opts.Profile = DefaultProfile()
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler()
	}

	settled := make(chan struct{})
	close(settled)

	return &Engine{
		completer: opts.Completer,
		profile:   opts.Profile,
		timing:    opts.Timing,
		scheduler: opts.Scheduler,
		clipboard: opts.Clipboard,
		notifier:  opts.Notifier,
		logger:    logging.OrNop(opts.Logger).Named("engine"),
		onChange:  opts.OnChange,
		timers:    make(map[uint64]Timer),
		settled:   settled,
	}
}

// Profile returns the profile the engine speaks about.
func (e *Engine) Profile() Profile {
	return e.profile
}

// Snapshot returns the current transcript and state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Messages:       e.transcript.Messages(),
		State:          e.state,
		Err:            e.lastErr,
		WelcomePending: e.welcomePending,
	}
}

// State returns the current request state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Open schedules the welcome message for a fresh session. It is a no-op if
// the transcript already has messages or a welcome is already scheduled.
func (e *Engine) Open() {
	e.mu.Lock()
	if !e.transcript.IsEmpty() || e.welcomePending {
		e.mu.Unlock()
		return
	}
	e.scheduleWelcomeLocked(e.timing.Welcome, e.profile.WelcomeText())
	e.mu.Unlock()
	e.changed()
}

// Send appends userText as a user message and starts one completion turn.
//
// It returns ErrEmptyInput for blank text and ErrBusy while a turn is
// outstanding; in both cases nothing changes. On success the user message is
// already in the transcript and the state is thinking when Send returns.
func (e *Engine) Send(userText string) error {
	if strings.TrimSpace(userText) == "" {
		return ErrEmptyInput
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return ErrBusy
	}

	payload := e.payloadLocked(userText)
	e.transcript.Append(model.NewUserMessage(userText))
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelFunc = cancel
	e.setStateLocked(StateThinking)
	e.mu.Unlock()

	e.logger.Debug("turn started", "generation", gen, "messages", len(payload))
	e.changed()

	go e.runTurn(ctx, gen, userText, payload)
	return nil
}

// payloadLocked builds system prompt + prior transcript + new user message.
func (e *Engine) payloadLocked(userText string) []cloud.ChatMessage {
	prior := e.transcript.Messages()
	payload := make([]cloud.ChatMessage, 0, len(prior)+2)
	payload = append(payload, cloud.NewSystemMessage(SystemPrompt(e.profile)))
	for _, m := range prior {
		payload = append(payload, cloud.ChatMessage{Role: m.Sender.APIRole(), Content: m.Text()})
	}
	return append(payload, cloud.NewUserMessage(userText))
}

func (e *Engine) runTurn(ctx context.Context, gen uint64, userText string, payload []cloud.ChatMessage) {
	reply, err := e.completer.Complete(ctx, payload)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		e.logger.Debug("discarding stale turn", "generation", gen)
		return
	}
	if e.cancelFunc != nil {
		e.cancelFunc()
		e.cancelFunc = nil
	}

	var msg model.Message
	var delay time.Duration
	if err != nil {
		e.logger.Warn("completion failed, using fallback", "generation", gen, "error", err)
		e.lastErr = err
		msg = SelectFallback(userText, e.profile)
		delay = e.timing.Fallback
	} else {
		e.lastErr = nil
		msg = model.NewBotMessage(reply)
		delay = e.timing.TypingDelay(reply)
	}

	// The reveal delay runs in typing for both outcomes so that a second
	// Send is still refused until the answer is in the transcript.
	e.setStateLocked(StateTyping)
	e.scheduleLocked(delay, func() {
		e.transcript.Append(msg)
		e.setStateLocked(StateIdle)
	})
	e.mu.Unlock()
	e.changed()
}

// Clear discards the transcript, abandons any in-flight turn and schedules a
// fresh welcome message. The state is idle when Clear returns.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.invalidateLocked()
	e.transcript.Reset()
	e.lastErr = nil
	e.setStateLocked(StateIdle)
	e.scheduleWelcomeLocked(e.timing.Clear, e.profile.ClearedText())
	e.mu.Unlock()

	e.logger.Debug("transcript cleared")
	e.changed()
}

// Cancel abandons any in-flight turn or pending welcome and returns to idle,
// keeping the transcript. The shell calls it when the widget closes.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.state == StateIdle && len(e.timers) == 0 {
		e.mu.Unlock()
		return
	}
	e.invalidateLocked()
	e.setStateLocked(StateIdle)
	e.mu.Unlock()

	e.logger.Debug("turn cancelled")
	e.changed()
}

// CopyTranscript hands the serialized transcript to the clipboard and
// reports the outcome through the notifier. Engine state is untouched.
func (e *Engine) CopyTranscript() error {
	e.mu.Lock()
	text := e.transcript.Format()
	e.mu.Unlock()

	err := ErrNoClipboard
	if e.clipboard != nil {
		err = e.clipboard.WriteAll(text)
	}

	if err != nil {
		e.logger.Warn("copy transcript failed", "error", err)
		if e.notifier != nil {
			e.notifier.NotifyError("Failed to copy chat")
		}
		return err
	}
	if e.notifier != nil {
		e.notifier.NotifySuccess("Chat copied to clipboard")
	}
	return nil
}

// Transcript returns the serialized transcript without touching the
// clipboard.
func (e *Engine) Transcript() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transcript.Format()
}

// WaitIdle blocks until the engine is idle with no delayed task pending, or
// ctx is done.
func (e *Engine) WaitIdle(ctx context.Context) error {
	e.mu.Lock()
	ch := e.settled
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// INTERNALS
// =============================================================================

// invalidateLocked makes every outstanding turn and timer stale.
func (e *Engine) invalidateLocked() {
	e.gen++
	if e.cancelFunc != nil {
		e.cancelFunc()
		e.cancelFunc = nil
	}
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
	e.welcomePending = false
	e.updateSettledLocked()
}

func (e *Engine) scheduleWelcomeLocked(d time.Duration, text string) {
	e.welcomePending = true
	e.scheduleLocked(d, func() {
		e.welcomePending = false
		// A send during the delay wins; the greeting would land out of order.
		if e.transcript.IsEmpty() {
			e.transcript.Append(model.NewBotMessage(text))
		}
	})
}

// scheduleLocked runs fn under the lock after d, unless the generation
// moves on first.
func (e *Engine) scheduleLocked(d time.Duration, fn func()) {
	gen := e.gen
	e.timerSeq++
	id := e.timerSeq

	// The callback blocks on e.mu, so it cannot observe the map before the
	// timer is registered below.
	e.timers[id] = e.scheduler.AfterFunc(d, func() {
		e.mu.Lock()
		delete(e.timers, id)
		if gen != e.gen {
			e.updateSettledLocked()
			e.mu.Unlock()
			return
		}
		fn()
		e.updateSettledLocked()
		e.mu.Unlock()
		e.changed()
	})
	e.updateSettledLocked()
}

func (e *Engine) setStateLocked(s State) {
	e.state = s
	e.updateSettledLocked()
}

// updateSettledLocked keeps the settled channel closed exactly while the
// engine is idle with no timers.
func (e *Engine) updateSettledLocked() {
	settled := e.state == StateIdle && len(e.timers) == 0
	select {
	case <-e.settled:
		if !settled {
			e.settled = make(chan struct{})
		}
	default:
		if settled {
			close(e.settled)
		}
	}
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}
