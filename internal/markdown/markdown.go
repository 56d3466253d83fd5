// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown turns assistant replies into display structures.
//
// Parse implements the markdown-lite subset the chat bubbles understand:
// paragraphs, **bold**, *italic* / _italic_ and [label](url) links. It is a
// one-way transform into fragments that the widget styles with lipgloss;
// any other syntax degrades to its literal text. Code blocks stay literal
// but are marked so the widget can highlight them.
//
// RenderTerminal renders full markdown with glamour for the line-oriented
// `chat` and `ask` commands.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fragment is a run of text sharing one style.
type Fragment struct {
	Text   string
	Bold   bool
	Italic bool
	// Link is the destination URL when the fragment is a link label.
	Link string
	// Code marks a literal code block. Lang is its fence info, if any.
	Code bool
	Lang string
}

// Paragraph is an ordered list of fragments.
type Paragraph []Fragment

// PlainText joins the fragment texts, rendering links as "label (url)"
// unless the label already is the URL.
func (p Paragraph) PlainText() string {
	var b strings.Builder
	for _, f := range p {
		b.WriteString(f.Text)
		if f.Link != "" && f.Link != f.Text && !strings.HasPrefix(f.Link, "mailto:") {
			b.WriteString(" (")
			b.WriteString(f.Link)
			b.WriteByte(')')
		}
	}
	return b.String()
}

var md = goldmark.New()

// Parse splits src into paragraphs of styled fragments. Adjacent fragments
// with identical style are merged.
func Parse(src string) []Paragraph {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	var paras []Paragraph
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if lit := literalLines(n, source); lit != "" {
				paras = append(paras, Paragraph{{Text: lit, Code: true, Lang: string(node.Language(source))}})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			if lit := literalLines(n, source); lit != "" {
				paras = append(paras, Paragraph{{Text: lit, Code: true}})
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			if lit := literalLines(n, source); lit != "" {
				paras = append(paras, Paragraph{{Text: lit}})
			}
			return ast.WalkSkipChildren, nil
		}

		if fc := n.FirstChild(); fc == nil || fc.Type() != ast.TypeInline {
			return ast.WalkContinue, nil
		}

		var frags []Fragment
		collectInline(n, source, Fragment{}, &frags)
		if p := merge(frags); len(p) > 0 {
			paras = append(paras, p)
		}
		return ast.WalkSkipChildren, nil
	})

	// Input made only of thematic breaks or similar yields no paragraphs.
	// Show it literally instead of as an empty bubble.
	if len(paras) == 0 && strings.TrimSpace(src) != "" {
		paras = append(paras, Paragraph{{Text: strings.TrimSpace(src)}})
	}
	return paras
}

// collectInline appends the inline descendants of n, inheriting style.
func collectInline(n ast.Node, source []byte, style Fragment, out *[]Fragment) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			emit(out, style, string(node.Segment.Value(source)))
			if node.HardLineBreak() {
				emit(out, style, "\n")
			} else if node.SoftLineBreak() {
				emit(out, style, " ")
			}
		case *ast.String:
			emit(out, style, string(node.Value))
		case *ast.Emphasis:
			s := style
			if node.Level >= 2 {
				s.Bold = true
			} else {
				s.Italic = true
			}
			collectInline(node, source, s, out)
		case *ast.Link:
			s := style
			s.Link = string(node.Destination)
			collectInline(node, source, s, out)
		case *ast.AutoLink:
			s := style
			s.Link = string(node.URL(source))
			emit(out, s, string(node.Label(source)))
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				emit(out, style, string(seg.Value(source)))
			}
		default:
			// Code spans, images and anything else contribute their text.
			collectInline(c, source, style, out)
		}
	}
}

func emit(out *[]Fragment, style Fragment, s string) {
	if s == "" {
		return
	}
	f := style
	f.Text = s
	*out = append(*out, f)
}

func merge(frags []Fragment) Paragraph {
	var p Paragraph
	for _, f := range frags {
		if n := len(p); n > 0 {
			last := &p[n-1]
			if last.Bold == f.Bold && last.Italic == f.Italic && last.Link == f.Link {
				last.Text += f.Text
				continue
			}
		}
		p = append(p, f)
	}
	// Trailing soft breaks leave a dangling space.
	if n := len(p); n > 0 {
		p[n-1].Text = strings.TrimRight(p[n-1].Text, " ")
		if p[n-1].Text == "" {
			p = p[:n-1]
		}
	}
	return p
}

func literalLines(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// =============================================================================
// TERMINAL RENDERING
// =============================================================================

var (
	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// RenderTerminal renders src as full markdown for a terminal of the given
// width. It returns src unchanged if glamour cannot render it.
func RenderTerminal(src string, width int) string {
	if width <= 0 {
		width = 80
	}

	rendererMu.Lock()
	defer rendererMu.Unlock()

	r, ok := renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return src
		}
		renderers[width] = r
	}

	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return out
}
