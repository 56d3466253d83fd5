// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// SENDER TESTS
// =============================================================================

func TestSender_Labels(t *testing.T) {
	tests := []struct {
		sender      Sender
		displayName string
		apiRole     string
	}{
		{SenderUser, "You", "user"},
		{SenderBot, "AI Assistant", "assistant"},
	}

	for _, tc := range tests {
		t.Run(tc.sender.String(), func(t *testing.T) {
			if got := tc.sender.DisplayName(); got != tc.displayName {
				t.Errorf("DisplayName() = %q, want %q", got, tc.displayName)
			}
			if got := tc.sender.APIRole(); got != tc.apiRole {
				t.Errorf("APIRole() = %q, want %q", got, tc.apiRole)
			}
		})
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessages(t *testing.T) {
	u := NewUserMessage("  hello  ")
	if u.Sender != SenderUser || !u.IsUser() {
		t.Errorf("user message sender = %q", u.Sender)
	}
	if u.Text() != "  hello  " {
		t.Errorf("user text must be verbatim, got %q", u.Text())
	}
	if u.ID == "" || u.Timestamp.IsZero() {
		t.Error("message should carry an ID and timestamp")
	}
	if u.Skills() != nil {
		t.Error("text message should have no skills")
	}

	b := NewBotMessage("Hi!")
	if b.Sender != SenderBot || b.IsUser() {
		t.Errorf("bot message sender = %q", b.Sender)
	}
	if b.ID == u.ID {
		t.Error("message IDs should be unique")
	}
}

func TestNewSkillsMessage_CopiesSkills(t *testing.T) {
	skills := []string{"React", "Go"}
	m := NewSkillsMessage("stack", skills)
	skills[0] = "mutated"

	if got := m.Skills(); len(got) != 2 || got[0] != "React" {
		t.Errorf("Skills() = %v, want [React Go]", got)
	}
	if _, ok := m.Body.(SkillsBody); !ok {
		t.Errorf("Body type = %T, want SkillsBody", m.Body)
	}
}

func TestMessage_ZeroValue(t *testing.T) {
	var m Message
	if m.Text() != "" || m.Skills() != nil {
		t.Error("zero message should have empty text and no skills")
	}
}

func TestMessage_MarshalJSON(t *testing.T) {
	m := NewSkillsMessage("stack", []string{"React"})
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"sender":"bot"`, `"text":"stack"`, `"skills":["React"]`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}

	data, _ = json.Marshal(NewUserMessage("hi"))
	if strings.Contains(string(data), "skills") {
		t.Errorf("text message JSON should omit skills: %s", data)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_AppendOrder(t *testing.T) {
	var tr Transcript
	if !tr.IsEmpty() {
		t.Fatal("new transcript should be empty")
	}
	if _, ok := tr.Last(); ok {
		t.Fatal("Last() on empty transcript should report false")
	}

	tr.Append(NewBotMessage("welcome"))
	tr.Append(NewUserMessage("hello"))
	tr.Append(NewBotMessage("Hi!"))

	if tr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tr.Len())
	}
	msgs := tr.Messages()
	want := []string{"welcome", "hello", "Hi!"}
	for i, m := range msgs {
		if m.Text() != want[i] {
			t.Errorf("msgs[%d] = %q, want %q", i, m.Text(), want[i])
		}
	}
	last, _ := tr.Last()
	if last.Text() != "Hi!" {
		t.Errorf("Last() = %q", last.Text())
	}
}

func TestTranscript_MessagesIsCopy(t *testing.T) {
	var tr Transcript
	tr.Append(NewUserMessage("a"))
	msgs := tr.Messages()
	msgs[0] = NewUserMessage("b")

	if got, _ := tr.Last(); got.Text() != "a" {
		t.Errorf("mutating Messages() result changed the transcript: %q", got.Text())
	}
}

func TestTranscript_Reset(t *testing.T) {
	var tr Transcript
	tr.Append(NewUserMessage("a"))
	tr.Reset()
	if !tr.IsEmpty() {
		t.Errorf("Len() after Reset = %d", tr.Len())
	}
}

func TestTranscript_Format(t *testing.T) {
	var tr Transcript
	tr.Append(NewBotMessage("Hello! Ask me anything."))
	tr.Append(NewUserMessage("what are your skills"))
	tr.Append(NewSkillsMessage("**React** and more", []string{"React"}))

	got := tr.Format()
	want := "AI Assistant: Hello! Ask me anything.\n\n" +
		"You: what are your skills\n\n" +
		"AI Assistant: **React** and more"
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}

	entries := strings.Split(got, "\n\n")
	if len(entries) != tr.Len() {
		t.Errorf("Format() produced %d entries for %d messages", len(entries), tr.Len())
	}
}

func TestTranscript_FormatEmpty(t *testing.T) {
	var tr Transcript
	if got := tr.Format(); got != "" {
		t.Errorf("Format() on empty transcript = %q", got)
	}
}
