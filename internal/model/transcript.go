// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// Transcript is the ordered conversation log. Insertion order is display
// order; entries are only ever appended or discarded all at once.
type Transcript struct {
	messages []Message
}

// Append adds msg to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// IsEmpty reports whether the transcript has no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.messages) == 0
}

// Messages returns a copy of the log, safe to hand to renderers.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Reset discards every message.
func (t *Transcript) Reset() {
	t.messages = nil
}

// Format serializes the transcript as "You: <text>" / "AI Assistant: <text>"
// entries separated by a blank line, in insertion order.
func (t *Transcript) Format() string {
	return FormatMessages(t.messages)
}

// FormatMessages is Format for an arbitrary message slice, used on snapshots.
func FormatMessages(msgs []Message) string {
	entries := make([]string, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, m.Sender.DisplayName()+": "+m.Text())
	}
	return strings.Join(entries, "\n\n")
}
