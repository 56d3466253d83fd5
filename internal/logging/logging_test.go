// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{
		"api_key", "sk-or-secret",
		"Authorization", "Bearer x",
		"contact_email", "a@b.c",
		"model", "meta-llama/llama-3-8b-instruct",
		"dangling",
	}
	out := sanitizeKVs(in)

	require.Len(t, out, len(in))
	assert.Equal(t, Redacted, out[1])
	assert.Equal(t, Redacted, out[3])
	assert.Equal(t, Redacted, out[5])
	assert.Equal(t, "meta-llama/llama-3-8b-instruct", out[7])
	assert.Equal(t, "dangling", out[8])
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "folio.log")
	l, err := New(Options{Level: "debug", Path: path})
	require.NoError(t, err)

	l.Named("engine").Info("request failed", "api_key", "sk-or-verysecret", "status", 500)
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, "request failed")
	assert.Contains(t, s, Redacted)
	assert.False(t, strings.Contains(s, "verysecret"), "secret leaked into log: %s", s)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	l, err := New(Options{Level: "warn", Path: path})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	require.NotNil(t, l)
	l.Info("discarded")
}
