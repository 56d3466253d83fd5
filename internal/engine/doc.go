// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine implements the chat transcript engine behind the portfolio
// assistant.
//
// The engine owns the transcript and a three-state request machine:
//
//	idle --Send--> thinking --reply--> typing --delay--> idle (reply appended)
//	                  |
//	                  +--failure--> typing --delay--> idle (fallback appended)
//
// At most one turn is in flight. Send is rejected with ErrBusy unless the
// engine is idle.
//
// # Cancellation
//
// Every turn captures a generation number. Clear and Cancel bump the
// generation, cancel the in-flight request context and stop pending timers,
// so a late reply is never appended to a transcript it no longer belongs to.
//
// # Timing
//
// All artificial delays (welcome, typing, fallback reveal, clear) go through
// a Scheduler. Production code uses NewScheduler; tests use a ManualScheduler
// and advance it explicitly.
//
// # Fallback
//
// When the remote completion fails, SelectFallback picks a canned answer by
// ordered keyword rules. The order is part of the contract: the first
// matching rule wins even when later rules also match.
package engine
