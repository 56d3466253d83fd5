// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Sender: who wrote a message (user or bot)
//   - Message: common envelope (ID, sender, timestamp) around a Body
//   - Body: tagged variant, either TextBody or SkillsBody
//   - Transcript: ordered, append-only message log
//
// # Usage
//
//	var t model.Transcript
//	t.Append(model.NewUserMessage("what are your skills"))
//	t.Append(model.NewSkillsMessage("I work with...", []string{"React", "Go"}))
//	fmt.Println(t.Format())
//
// Transcript is not safe for concurrent use; the engine serializes access.
package model
