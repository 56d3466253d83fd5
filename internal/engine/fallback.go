// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/folio/internal/model"
)

// =============================================================================
// FALLBACK SELECTION
// =============================================================================

// Topic names the canned answer a fallback rule selects.
type Topic string

const (
	TopicIdentity  Topic = "identity"
	TopicSkills    Topic = "skills"
	TopicWork      Topic = "work"
	TopicProjects  Topic = "projects"
	TopicEducation Topic = "education"
	TopicContact   Topic = "contact"
	TopicHobbies   Topic = "hobbies"
	TopicGreeting  Topic = "greeting"
	TopicDefault   Topic = "default"
)

type rule struct {
	topic Topic
	match func(lower string) bool
}

// rules are evaluated top to bottom; the first match wins. Reordering them
// changes which answer overlapping questions get.
var rules = []rule{
	{TopicIdentity, func(s string) bool {
		return strings.Contains(s, "who") && containsAny(s, "you", "george")
	}},
	{TopicSkills, func(s string) bool { return containsAny(s, "skill", "technology", "tech stack") }},
	{TopicWork, func(s string) bool { return containsAny(s, "experience", "work", "job") }},
	{TopicProjects, func(s string) bool { return containsAny(s, "project", "portfolio") }},
	{TopicEducation, func(s string) bool { return containsAny(s, "education", "study", "degree") }},
	{TopicContact, func(s string) bool { return containsAny(s, "contact", "hire", "email") }},
	{TopicHobbies, func(s string) bool { return containsAny(s, "hobby", "personal", "free time") }},
	{TopicGreeting, func(s string) bool {
		return containsAny(s, "hello", "hi") || s == "hey"
	}},
}

// ClassifyFallback returns the topic the fallback rules pick for userText.
func ClassifyFallback(userText string) Topic {
	// A Caser is stateful and not safe to share across goroutines.
	lower := cases.Lower(language.Und).String(userText)
	for _, r := range rules {
		if r.match(lower) {
			return r.topic
		}
	}
	return TopicDefault
}

// SelectFallback builds the bot message answering userText without the
// remote model. It is a pure function of its inputs apart from the message
// ID and timestamp.
func SelectFallback(userText string, p Profile) model.Message {
	topic := ClassifyFallback(userText)
	text := fallbackText(topic, p)
	if topic == TopicSkills {
		return model.NewSkillsMessage(text, FallbackSkills)
	}
	return model.NewBotMessage(text)
}

func fallbackText(topic Topic, p Profile) string {
	name := p.FirstName()
	switch topic {
	case TopicIdentity:
		return fmt.Sprintf("I'm the AI assistant for **%s**, a %s. I can tell you about %s's skills, projects and experience.",
			p.Name, titleOr(p), name)
	case TopicSkills:
		return fmt.Sprintf("%s works across the full stack. The core toolkit is below, with a focus on *clean, maintainable* code.", name)
	case TopicWork:
		return fmt.Sprintf("%s has shipped production web applications end to end, from database design to polished front ends. The **Experience** section has the details.", name)
	case TopicProjects:
		return fmt.Sprintf("%s's projects range from full-stack web apps to developer tooling. Take a look at the **Projects** section of the portfolio.", name)
	case TopicEducation:
		return fmt.Sprintf("%s pairs a formal background in computer science with continuous self-study. See the **About** section for more.", name)
	case TopicContact:
		return contactText(p)
	case TopicHobbies:
		return fmt.Sprintf("Outside of work %s enjoys learning new technologies, contributing to open source and the occasional side project.", name)
	case TopicGreeting:
		return fmt.Sprintf("Hello! How can I help you learn more about %s today?", name)
	default:
		return fmt.Sprintf("%s is a %s who builds modern web applications with React, Node.js and TypeScript. Ask about skills, projects or experience!",
			name, titleOr(p))
	}
}

func contactText(p Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You can reach %s", p.FirstName())
	if p.Email != "" {
		fmt.Fprintf(&b, " at [%s](mailto:%s)", p.Email, p.Email)
	}
	b.WriteString(" or through the contact form.")
	if p.LinkedIn != "" {
		fmt.Fprintf(&b, " %s is also on [LinkedIn](%s).", p.FirstName(), p.LinkedIn)
	}
	return b.String()
}

func titleOr(p Profile) string {
	if p.Title == "" {
		return "developer"
	}
	return p.Title
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
