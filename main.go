// folio - chat with an AI assistant about a portfolio owner, in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jeranaias/folio/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate

	// RELIABILITY: a panic in a handler must not leave the terminal in raw
	// mode without telling the user what happened.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "folio: unexpected error: %v\n%s", r, debug.Stack())
			os.Exit(cli.ExitGeneralError)
		}
	}()

	cmd, args := cli.Parse()
	os.Exit(cli.Run(cmd, args))
}
