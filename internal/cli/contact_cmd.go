// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// contact_cmd.go - Contact form command.
//
// Command: contact
// Short:   Send a message to the portfolio owner
//
// Examples:
//   folio contact --name "Sam" --email sam@example.com --message "Hello!"
//   folio contact -n Sam -e sam@example.com Loved the demo

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/folio/internal/contact"
)

// HandleContact validates and submits the contact form.
func HandleContact(args Args) error {
	sub := contact.Submission{
		Name:    args.Name,
		Email:   args.Email,
		Message: args.Message,
	}.Normalize()

	// Bad input is reported before anything is loaded or sent.
	if err := sub.Validate(); err != nil {
		return err
	}

	app, err := NewApp(args)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Contact.Submit(ctx, sub); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("contact", ContactData{Name: sub.Name, Email: sub.Email, Sent: true}).Print()
	}
	if !args.Quiet {
		fmt.Fprintf(stdout, "%s Thanks %s, your message was sent.\n", SuccessStyle.Render("[OK]"), sub.Name)
	}
	return nil
}
