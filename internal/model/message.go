// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns the label used when a transcript is exported.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "AI Assistant"
	default:
		return string(s)
	}
}

// APIRole maps the sender onto the completion API's role vocabulary.
func (s Sender) APIRole() string {
	if s == SenderBot {
		return "assistant"
	}
	return "user"
}

// =============================================================================
// BODY VARIANTS
// =============================================================================

// Body is the payload of a message. The set of implementations is closed:
// TextBody and SkillsBody.
type Body interface {
	// Text returns the literal content shown to the user. It may contain
	// the markdown-lite subset (bold, italic, links, paragraphs).
	Text() string

	isBody()
}

// TextBody is a plain message.
type TextBody struct {
	Content string
}

func (b TextBody) Text() string { return b.Content }
func (TextBody) isBody()        {}

// SkillsBody is a bot message that carries an ordered list of technology
// labels, rendered as chips beneath the text.
type SkillsBody struct {
	Content string
	Skills  []string
}

func (b SkillsBody) Text() string { return b.Content }
func (SkillsBody) isBody()        {}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are never mutated after
// creation.
type Message struct {
	ID        string
	Sender    Sender
	Timestamp time.Time
	Body      Body
}

// NewUserMessage creates a user message carrying text verbatim.
func NewUserMessage(text string) Message {
	return newMessage(SenderUser, TextBody{Content: text})
}

// NewBotMessage creates a plain bot message.
func NewBotMessage(text string) Message {
	return newMessage(SenderBot, TextBody{Content: text})
}

// NewSkillsMessage creates a bot message with skill chips. The skills slice
// is copied so later changes by the caller do not leak into the transcript.
func NewSkillsMessage(text string, skills []string) Message {
	return newMessage(SenderBot, SkillsBody{
		Content: text,
		Skills:  append([]string(nil), skills...),
	})
}

func newMessage(sender Sender, body Body) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Timestamp: time.Now(),
		Body:      body,
	}
}

// Text returns the message content, or "" for a zero Message.
func (m Message) Text() string {
	if m.Body == nil {
		return ""
	}
	return m.Body.Text()
}

// Skills returns the chip labels of a SkillsBody message, or nil.
func (m Message) Skills() []string {
	if b, ok := m.Body.(SkillsBody); ok {
		return b.Skills
	}
	return nil
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// FormatTime returns the timestamp as shown next to a chat row.
func (m Message) FormatTime() string {
	return m.Timestamp.Format("3:04 PM")
}

// messageJSON is the wire shape used by `folio ask --json`.
type messageJSON struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Skills    []string  `json:"skills,omitempty"`
}

// MarshalJSON flattens the body variant into text and an optional skills list.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.ID,
		Sender:    m.Sender,
		Timestamp: m.Timestamp,
		Text:      m.Text(),
		Skills:    m.Skills(),
	})
}
