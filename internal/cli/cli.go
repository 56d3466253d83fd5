// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command parsing and dispatch for folio.

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (overridden at build time with -ldflags -X).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdContact
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command word.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdContact:
		return "contact"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	Model      string
	Theme      string
	ConfigPath string

	// tui
	Open bool

	// ask
	Query string

	// contact
	Name    string
	Email   string
	Message string

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Word is the unrecognized command for CmdUnknown.
	Word string

	// Raw holds the arguments after the command word.
	Raw []string
}

const usageText = `folio - chat with an AI assistant about a portfolio owner

Usage:
  folio                          Start the chat widget (default)
  folio tui [--open]             Start the chat widget, optionally already open
  folio chat                     Line-oriented chat with input history
  folio ask "question"           Ask one question and print the reply
  folio contact                  Send the contact form
      --name NAME --email EMAIL --message TEXT
  folio config show              Print the effective configuration
  folio config get KEY           Print one value (dot notation)
  folio config set KEY VALUE     Change one value and save the file
  folio config path              Print the configuration file path
  folio version                  Print version information
  folio help                     Show this help

Global flags:
  -q, --quiet                    Less output
  -v, --verbose                  Debug logging
  --json                         Machine-readable output (ask, contact, config, version)
  --model MODEL                  Override cloud.model for this run
  --theme dark|light|auto        Override ui.theme for this run
  --config PATH                  Use a different configuration file

Chat commands:
  /clear                         Start over
  /copy                          Copy the conversation to the clipboard
  /help                          Show chat commands
  /quit                          Leave

Environment:
  FOLIO_OPENROUTER_KEY, OPENROUTER_API_KEY   OpenRouter API key
  FOLIO_MODEL, FOLIO_THEME, FOLIO_CONTACT_ENDPOINT,
  FOLIO_LOG_LEVEL, FOLIO_STATE_BACKEND        Override the matching settings
  NO_COLOR                                    Disable colors

Without an API key every question gets a saved answer.
`

// PrintUsage writes the help text to stdout.
func PrintUsage() {
	fmt.Fprint(stdout, usageText)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	word := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch word {
	case "tui", "widget":
		p := NewArgParser(remaining, "open", "o")
		parsed.Open = p.AnyBool("open", "o")
		return CmdTUI, parsed

	case "chat":
		return CmdChat, parsed

	case "ask", "a":
		parsed.Query = strings.TrimSpace(strings.Join(NewArgParser(remaining).PositionalFrom(0), " "))
		return CmdAsk, parsed

	case "contact":
		p := NewArgParser(remaining)
		parsed.Name = p.FirstFlag("name", "n")
		parsed.Email = p.FirstFlag("email", "e")
		parsed.Message = p.FirstFlag("message", "m")
		if parsed.Message == "" {
			parsed.Message = JoinPositionalArgs(p, 0)
		}
		return CmdContact, parsed

	case "config":
		p := NewArgParser(remaining)
		parsed.Subcommand = strings.ToLower(p.Subcommand())
		parsed.ConfigKey = p.Positional(1)
		parsed.ConfigVal = JoinPositionalArgs(p, 2)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		parsed.Word = word
		return CmdUnknown, parsed
	}
}

// parseGlobalFlags strips the global flags from args wherever they appear.
// "--" ends flag parsing; everything after it is passed through.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--model", "--theme", "--config":
			if i+1 < len(args) {
				i++
				setGlobalValue(&parsed, strings.TrimPrefix(arg, "--"), args[i])
			}
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && isGlobalValueFlag(name) {
				setGlobalValue(&parsed, strings.TrimPrefix(name, "--"), value)
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsed
}

func isGlobalValueFlag(name string) bool {
	return name == "--model" || name == "--theme" || name == "--config"
}

func setGlobalValue(a *Args, name, value string) {
	switch name {
	case "model":
		a.Model = value
	case "theme":
		a.Theme = value
	case "config":
		a.ConfigPath = value
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes cmd and returns the process exit code.
func Run(cmd Command, args Args) int {
	var err error
	switch cmd {
	case CmdTUI:
		err = HandleTUI(args)
	case CmdChat:
		err = HandleChat(args)
	case CmdAsk:
		err = HandleAsk(args)
	case CmdContact:
		err = HandleContact(args)
	case CmdConfig:
		err = HandleConfig(args)
	case CmdVersion:
		err = HandleVersion(args)
	case CmdHelp:
		PrintUsage()
	default:
		err = &ValidationError{
			Field:   "command",
			Value:   args.Word,
			Reason:  "unknown command",
			Example: "folio help",
		}
	}

	if err != nil {
		DisplayError(err, args.JSON)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// HandleVersion prints version information.
func HandleVersion(args Args) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if args.JSON {
		return NewJSONResponse("version", data).Print()
	}

	fmt.Fprintf(stdout, "folio %s\n", data.Version)
	if !args.Quiet {
		fmt.Fprintf(stdout, "  commit:   %s\n", data.GitCommit)
		fmt.Fprintf(stdout, "  built:    %s\n", data.BuildDate)
		fmt.Fprintf(stdout, "  go:       %s\n", data.GoVersion)
		fmt.Fprintf(stdout, "  platform: %s\n", data.Platform)
	}
	return nil
}
