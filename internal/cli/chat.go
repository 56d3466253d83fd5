// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat command.
//
// Command: chat
// Short:   Chat with the assistant in the terminal, one line at a time
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Start over with a fresh welcome
//   /copy               Copy the conversation to the clipboard
//   /quit, /q, /exit    Leave
//   Ctrl+C              Cancel the current answer (at the prompt: leave)
//   Ctrl+D              Leave

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/folio/internal/engine"
	"github.com/jeranaias/folio/internal/logging"
	"github.com/jeranaias/folio/internal/markdown"
	"github.com/jeranaias/folio/internal/model"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor that persists history to historyFile.
func NewChatCLI(historyFile string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{line: line, historyFile: historyFile}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line. Non-blank lines are added to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with 0600 permissions.
func (c *ChatCLI) SaveHistory() error {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.line.WriteHistory(f)
	return err
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() error {
	err := c.SaveHistory()
	if cerr := c.line.Close(); err == nil {
		err = cerr
	}
	return err
}

// =============================================================================
// SESSION
// =============================================================================

// lineReader is the input side of a chat session. *ChatCLI satisfies it.
type lineReader interface {
	ReadInput(prompt string) (string, error)
}

// printNotifier reports copy results inline.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) NotifySuccess(text string) {
	fmt.Fprintln(n.out, SuccessStyle.Render("[OK]")+" "+text)
}

func (n printNotifier) NotifyError(text string) {
	fmt.Fprintln(n.out, ErrorStyle.Render("[Error]")+" "+text)
}

// chatSession drives an engine from a line reader.
type chatSession struct {
	engine *engine.Engine
	in     lineReader
	out    io.Writer
	logger *logging.Logger
	width  int
	quiet  bool

	// waitContext bounds a wait for the engine. The default is cancelled by
	// Ctrl+C.
	waitContext func() (context.Context, context.CancelFunc)

	// lastID is the newest message already shown.
	lastID string
}

func newChatSession(eng *engine.Engine, in lineReader, out io.Writer) *chatSession {
	return &chatSession{
		engine: eng,
		in:     in,
		out:    out,
		logger: logging.Nop(),
		width:  DefaultTerminalWidth,
		waitContext: func() (context.Context, context.CancelFunc) {
			return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		},
	}
}

// HandleChat runs the interactive chat until the user leaves.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	input := NewChatCLI(app.Config.Chat.HistoryPath())
	defer func() {
		if err := input.Close(); err != nil {
			app.Logger.Warn("saving chat history failed", "error", err)
		}
	}()

	eng := app.NewEngine(printNotifier{out: stdout}, nil)
	s := newChatSession(eng, input, stdout)
	s.logger = app.Logger.Named("chat")
	s.width = renderWidth()
	s.quiet = args.Quiet

	if !s.quiet {
		s.printBanner()
	}
	return s.run()
}

// run is the REPL loop. It returns nil when the user leaves.
func (s *chatSession) run() error {
	s.engine.Open()
	s.settle()
	s.printNew()

	for {
		input, err := s.in.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or a closed stdin.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				s.logger.Warn("reading input failed", "error", err)
			}
			s.goodbye()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := s.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				s.goodbye()
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			s.goodbye()
			return nil
		}

		s.send(input)
	}
}

// send runs one turn and prints the reply.
func (s *chatSession) send(text string) {
	switch err := s.engine.Send(text); {
	case errors.Is(err, engine.ErrEmptyInput):
		return
	case errors.Is(err, engine.ErrBusy):
		fmt.Fprintln(s.out, WarningStyle.Render("Still answering, one moment."))
		return
	case err != nil:
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}

	if !s.quiet {
		fmt.Fprintln(s.out, DimStyle.Render("Thinking..."))
	}
	if !s.settle() {
		return
	}

	if snap := s.engine.Snapshot(); snap.Err != nil && !s.quiet {
		fmt.Fprintln(s.out, WarningStyle.Render(errorNoticeText))
	}
	s.printNew()
}

// settle waits for the engine to go idle. It reports false when the wait was
// interrupted, in which case the turn has been cancelled.
func (s *chatSession) settle() bool {
	ctx, stop := s.waitContext()
	defer stop()

	if err := s.engine.WaitIdle(ctx); err != nil {
		s.engine.Cancel()
		fmt.Fprintln(s.out, WarningStyle.Render("[Cancelled]"))
		return false
	}
	return true
}

// handleSlashCommand runs a /command. It reports false when the session
// should end.
func (s *chatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?":
		s.printHelp()
		return true, nil

	case "/clear", "/c":
		s.engine.Clear()
		fmt.Fprintln(s.out, DimStyle.Render("[Conversation cleared]"))
		if s.settle() {
			s.printNew()
		}
		return true, nil

	case "/copy":
		// The notifier prints the outcome.
		if err := s.engine.CopyTranscript(); err != nil {
			s.logger.Debug("copy failed", "error", err)
		}
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", parts[0])
	}
}

// printNew prints the bot messages added since the last call. User messages
// are not echoed. A cleared transcript starts over from its first message.
func (s *chatSession) printNew() {
	msgs := s.engine.Snapshot().Messages

	start := 0
	for i, m := range msgs {
		if m.ID == s.lastID {
			start = i + 1
			break
		}
	}

	for _, m := range msgs[start:] {
		if !m.IsUser() {
			fmt.Fprintln(s.out, s.renderMessage(m))
		}
	}
	if len(msgs) > 0 {
		s.lastID = msgs[len(msgs)-1].ID
	}
}

// renderMessage formats a bot message for the terminal.
func (s *chatSession) renderMessage(m model.Message) string {
	var b strings.Builder
	b.WriteString(AssistantStyle.Render(m.Sender.DisplayName()))
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(markdown.RenderTerminal(m.Text(), s.width), "\n"))
	if skills := m.Skills(); len(skills) > 0 {
		b.WriteString("\n")
		b.WriteString(renderChips(skills))
	}
	b.WriteString("\n")
	return b.String()
}

// renderChips renders skill chips on one line.
func renderChips(skills []string) string {
	chips := make([]string, 0, len(skills))
	for _, skill := range skills {
		chips = append(chips, ChipStyle.Render("["+skill+"]"))
	}
	return strings.Join(chips, " ")
}

func (s *chatSession) printBanner() {
	p := s.engine.Profile()
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, TitleStyle.Render("Chat about "+p.Name))
	fmt.Fprintln(s.out, RenderSeparator(30))
	fmt.Fprintln(s.out, DimStyle.Render("Type /help for commands, Ctrl+D to leave."))
	fmt.Fprintln(s.out)
}

func (s *chatSession) printHelp() {
	fmt.Fprintln(s.out, TitleStyle.Render("Chat commands"))
	fmt.Fprintln(s.out, RenderLabel("/clear", "Start over"))
	fmt.Fprintln(s.out, RenderLabel("/copy", "Copy the conversation to the clipboard"))
	fmt.Fprintln(s.out, RenderLabel("/help", "Show this help"))
	fmt.Fprintln(s.out, RenderLabel("/quit", "Leave"))
}

func (s *chatSession) goodbye() {
	s.engine.Cancel()
	if !s.quiet {
		fmt.Fprintln(s.out, DimStyle.Render("Goodbye!"))
	}
}

// errorNoticeText is shown after a reply that came from the fallback rules.
const errorNoticeText = "The AI service is unavailable right now, so this is a saved answer."
