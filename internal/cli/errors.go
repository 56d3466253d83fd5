// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error handling shared by the folio commands.
//
// Handlers return errors and never print-and-return-nil. Run displays the
// error once and maps it to an exit code.

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/folio/internal/cloud"
	"github.com/jeranaias/folio/internal/config"
	"github.com/jeranaias/folio/internal/contact"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates a remote service failed or refused
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a command failure with context.
type CommandError struct {
	Command string // e.g. "config"
	Action  string // e.g. "set"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is a bad argument on the command line.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a CommandError.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{
		Field:   argName,
		Reason:  "required argument missing",
		Example: usage,
	}
}

// ErrUnknownSubcommand reports a subcommand the command does not have.
func ErrUnknownSubcommand(command, sub, usage string) error {
	return &ValidationError{
		Field:   command + " subcommand",
		Value:   sub,
		Reason:  "unknown subcommand",
		Example: usage,
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to stderr, or as a JSON document to stdout in JSON
// mode.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(err)
		return
	}

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		fmt.Fprintf(stderr, "%s invalid configuration:\n", ErrorStyle.Render("[ERROR]"))
		for _, v := range verrs {
			fmt.Fprintf(stderr, "  - %s\n", v.Error())
		}
		return
	}
	fmt.Fprintf(stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// DisplayErrorJSON writes err as a JSON document with a type discriminator.
func DisplayErrorJSON(err error) {
	output := map[string]interface{}{
		"error":   err.Error(),
		"success": false,
	}

	var (
		cmdErr   *CommandError
		argErr   *ValidationError
		fieldErr *contact.FieldError
		apiErr   *cloud.APIError
		verrs    config.ValidateErrors
	)
	switch {
	case errors.As(err, &argErr):
		output["error_type"] = "validation_error"
		output["field"] = argErr.Field
		output["reason"] = argErr.Reason
	case errors.As(err, &fieldErr):
		output["error_type"] = "validation_error"
		output["field"] = fieldErr.Field
		output["reason"] = fieldErr.Reason
	case errors.As(err, &verrs):
		output["error_type"] = "config_error"
		fields := make([]string, 0, len(verrs))
		for _, v := range verrs {
			fields = append(fields, v.Field)
		}
		output["fields"] = fields
	case errors.As(err, &apiErr):
		output["error_type"] = "api_error"
		output["status_code"] = apiErr.Status
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["command"] = cmdErr.Command
		output["action"] = cmdErr.Action
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// GetExitCode maps err to an exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var argErr *ValidationError
	var fieldErr *contact.FieldError
	if errors.As(err, &argErr) || errors.As(err, &fieldErr) {
		return ExitUsageError
	}

	var verrs config.ValidateErrors
	var cfgErr config.ValidationError
	if errors.As(err, &verrs) || errors.As(err, &cfgErr) || errors.Is(err, contact.ErrNotConfigured) {
		return ExitConfigError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var apiErr *cloud.APIError
	if errors.As(err, &apiErr) || errors.Is(err, contact.ErrRejected) {
		return ExitNetworkError
	}

	return ExitGeneralError
}
