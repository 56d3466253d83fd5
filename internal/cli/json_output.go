// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripted use of the CLI.
//
// With --json every command writes exactly one JSONResponse to stdout.
// Human-readable notes go to stderr.

package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/folio/internal/model"
)

// JSONResponse is the envelope every command writes in JSON mode.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to stdout, indented.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// String returns the indented JSON.
func (r *JSONResponse) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":"failed to marshal response: %s","timestamp":"%s"}`,
			err.Error(), time.Now().UTC().Format(time.RFC3339))
	}
	return string(data)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// AskData is the payload of "ask --json".
type AskData struct {
	Reply    string          `json:"reply"`
	Fallback bool            `json:"fallback"`
	Skills   []string        `json:"skills,omitempty"`
	Messages []model.Message `json:"messages"`
	Error    string          `json:"remote_error,omitempty"`
}

// ContactData is the payload of "contact --json".
type ContactData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
}

// ConfigData is the payload of "config get --json".
type ConfigData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// VersionData is the payload of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}
