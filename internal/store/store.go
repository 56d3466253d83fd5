// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists the small amount of UI state folio keeps between
// runs: whether the visitor has opened the chat before and which theme they
// picked.
//
// The state is injected into the widget shell as a Store rather than read
// from a global. Two durable backends exist: a JSON file written atomically
// and a SQLite database. Memory is used by tests and when the state
// directory is unusable.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Well-known keys.
const (
	// KeyInteracted is set to "true" the first time the chat widget opens.
	KeyInteracted = "chat.interacted"

	// KeyTheme holds the selected theme name.
	KeyTheme = "ui.theme"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown state backend")

// Store is a string key/value store. Get reports ok=false for a missing key.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// Open returns the store for backend rooted at path. An empty backend means
// BackendFile.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Bool reads key as a boolean flag. Anything other than "true" is false.
func Bool(s Store, key string) (bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

// MarkOnce sets key to "true" unless it already is. It reports whether this
// call performed the write.
func MarkOnce(s Store, key string) (bool, error) {
	set, err := Bool(s, key)
	if err != nil {
		return false, err
	}
	if set {
		return false, nil
	}
	if err := s.Set(key, "true"); err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Close() error { return nil }
