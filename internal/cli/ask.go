// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single-question command.
//
// Command: ask
// Short:   Ask one question and print the reply
//
// Examples:
//   folio ask "What projects have you built?"
//   echo "what are your skills" | folio ask
//   folio ask --json "how do I get in touch"

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jeranaias/folio/internal/engine"
)

// maxStdinQuery bounds a question read from a pipe.
const maxStdinQuery = 64 * 1024

// HandleAsk runs one turn and prints the reply.
func HandleAsk(args Args) error {
	query := args.Query
	if query == "" && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, maxStdinQuery))
		if err != nil {
			return fmt.Errorf("failed to read question from stdin: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return ErrMissingArgument("question", `folio ask "What are your skills?"`)
	}

	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := app.NewEngine(nil, nil)
	data, err := ask(ctx, eng, query)
	if err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("ask", data).Print()
	}

	if data.Fallback && !args.Quiet {
		fmt.Fprintln(stderr, WarningStyle.Render(errorNoticeText))
	}
	s := &chatSession{engine: eng, width: renderWidth()}
	reply := data.Messages[len(data.Messages)-1]
	fmt.Fprint(stdout, s.renderMessage(reply))
	return nil
}

// ask sends query and waits for the reply.
func ask(ctx context.Context, eng *engine.Engine, query string) (AskData, error) {
	if err := eng.Send(query); err != nil {
		if errors.Is(err, engine.ErrEmptyInput) {
			return AskData{}, ErrMissingArgument("question", `folio ask "What are your skills?"`)
		}
		return AskData{}, err
	}
	if err := eng.WaitIdle(ctx); err != nil {
		eng.Cancel()
		return AskData{}, fmt.Errorf("waiting for reply: %w", err)
	}

	snap := eng.Snapshot()
	if len(snap.Messages) == 0 || snap.Messages[len(snap.Messages)-1].IsUser() {
		return AskData{}, errors.New("no reply was produced")
	}

	reply := snap.Messages[len(snap.Messages)-1]
	data := AskData{
		Reply:    reply.Text(),
		Fallback: snap.Err != nil,
		Skills:   reply.Skills(),
		Messages: snap.Messages,
	}
	if snap.Err != nil {
		data.Error = snap.Err.Error()
	}
	return data, nil
}
