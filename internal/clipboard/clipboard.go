// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clipboard adapts the system clipboard to the engine's Clipboard
// interface.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// System writes to the OS clipboard.
type System struct{}

// New returns the system clipboard writer.
func New() System {
	return System{}
}

// Available reports whether a clipboard utility was found. On Linux this
// needs xclip, xsel, wl-copy or termux-clipboard-set.
func (System) Available() bool {
	return !clipboard.Unsupported
}

// WriteAll copies text to the clipboard.
func (s System) WriteAll(text string) error {
	if !s.Available() {
		return fmt.Errorf("no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}
