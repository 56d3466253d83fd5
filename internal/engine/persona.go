// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"strings"
)

// Profile holds the facts the assistant speaks about. It feeds both the
// system prompt sent to the model and the canned fallback answers.
type Profile struct {
	Name     string
	Title    string
	Email    string
	Location string
	GitHub   string
	LinkedIn string
	Website  string
}

// DefaultProfile returns the profile used when none is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:     "George",
		Title:    "Full-Stack Developer",
		Email:    "hello@example.com",
		Location: "Remote",
		GitHub:   "https://github.com/example",
		LinkedIn: "https://linkedin.com/in/example",
	}
}

// FirstName returns the first word of the profile name.
func (p Profile) FirstName() string {
	if f := strings.Fields(p.Name); len(f) > 0 {
		return f[0]
	}
	return "the developer"
}

// FallbackSkills is the fixed chip list attached to the skills fallback.
var FallbackSkills = []string{"React", "Node.js", "MongoDB", "Express", "TypeScript", "Tailwind CSS"}

// WelcomeText is the greeting appended by Open.
func (p Profile) WelcomeText() string {
	return fmt.Sprintf("Hi there! I'm %s's AI assistant. Ask me about %s's skills, projects, experience or how to get in touch.",
		p.FirstName(), p.FirstName())
}

// ClearedText is the greeting appended after Clear.
func (p Profile) ClearedText() string {
	return fmt.Sprintf("Chat cleared. What would you like to know about %s?", p.FirstName())
}

// responseRules shape replies so they fit a small chat bubble.
var responseRules = []string{
	"Keep answers short: two to four sentences unless the visitor asks for detail.",
	"Use **bold** for key terms and [label](url) for links. No headings, tables or code blocks.",
	"Speak about the developer in the third person; you are their assistant, not them.",
	"If you do not know something, say so and point to the contact details instead of guessing.",
	"Stay on topic: the developer's work, skills, projects, background and availability.",
}

// SystemPrompt builds the fixed system instruction sent ahead of the
// transcript: persona description, response-style rules, contact facts.
func SystemPrompt(p Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the AI assistant on the portfolio website of %s", p.Name)
	if p.Title != "" {
		fmt.Fprintf(&b, ", a %s", p.Title)
	}
	b.WriteString(". You answer visitors' questions about ")
	b.WriteString(p.FirstName())
	b.WriteString(" in a friendly, professional tone.\n\n")

	b.WriteString("Response style:\n")
	for _, r := range responseRules {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}

	b.WriteString("\nContact facts:\n")
	writeFact(&b, "Email", p.Email)
	writeFact(&b, "Location", p.Location)
	writeFact(&b, "GitHub", p.GitHub)
	writeFact(&b, "LinkedIn", p.LinkedIn)
	writeFact(&b, "Website", p.Website)

	return strings.TrimRight(b.String(), "\n")
}

func writeFact(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
