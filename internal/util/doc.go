// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the folio packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync, used by the
//     config and state store packages
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - StringWidth: terminal column width of a string
//   - WrapWidth: greedy word wrap to a column width
//
// # Usage
//
//	// Persist settings without ever leaving a half-written file
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a label into a fixed-width launcher
//	label := util.TruncateWidth(title, 24)
package util
