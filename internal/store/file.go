// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/jeranaias/folio/internal/util"
)

// File is a Store persisted as one JSON object. Every Set rewrites the file
// atomically.
type File struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// OpenFile loads path, treating a missing file as empty.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = value

	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err == nil {
		err = util.AtomicWriteFile(f.path, raw, 0600)
	}
	if err != nil {
		// Keep memory consistent with disk.
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
