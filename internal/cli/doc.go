// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the command handlers for
// folio.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	os.Exit(cli.Run(cmd, args))
//
// # Commands
//
//   - tui (default): the chat widget shell
//   - chat: line-oriented chat with input history
//   - ask: a single question, optionally as JSON
//   - contact: submit the contact form
//   - config: show, get, set or locate the configuration
//   - version, help
//
// Every command builds its collaborators through NewApp so that the
// configuration, logger and persisted state are wired the same way
// everywhere.
package cli
