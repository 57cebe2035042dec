package richtext

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// Renderer converts rich-text source into a markup fragment. The zero value
// renders with EscapeHTML.
type Renderer struct {
	policy EscapePolicy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEscapePolicy overrides the escaping policy. EscapeHTML is the default.
func WithEscapePolicy(policy EscapePolicy) Option {
	return func(r *Renderer) {
		r.policy = policy
	}
}

// New builds a Renderer with the supplied options.
func New(opts ...Option) *Renderer {
	r := &Renderer{policy: EscapeHTML}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultRenderer = New()

// Render converts content using the default renderer.
func Render(content string) string {
	return defaultRenderer.Render(content)
}

// Policy reports the escaping policy in use.
func (r *Renderer) Policy() EscapePolicy {
	if r == nil {
		return EscapeHTML
	}
	return r.policy
}

// Render converts content into a markup fragment. Empty or whitespace-only
// input yields an empty string.
func (r *Renderer) Render(content string) string {
	blocks := parseBlocks(content)
	if len(blocks) == 0 {
		return ""
	}

	policy := r.Policy()
	var sb strings.Builder
	for i, b := range blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeBlock(&sb, b, policy)
	}
	return sb.String()
}

var headingTags = [...]atom.Atom{atom.H1, atom.H2, atom.H3}

func writeBlock(sb *strings.Builder, b block, policy EscapePolicy) {
	switch b.kind {
	case blockHeading:
		tag := headingTags[clampLevel(b.level)-1]
		openTag(sb, tag)
		writeInline(sb, parseInline(b.lines[0]), policy)
		closeTag(sb, tag)
	case blockQuote:
		openTag(sb, atom.Blockquote)
		writeInline(sb, parseInline(b.lines[0]), policy)
		closeTag(sb, atom.Blockquote)
	case blockList:
		tag := atom.Ul
		if b.ordered {
			tag = atom.Ol
		}
		openTag(sb, tag)
		for _, item := range b.lines {
			openTag(sb, atom.Li)
			writeInline(sb, parseInline(item), policy)
			closeTag(sb, atom.Li)
		}
		closeTag(sb, tag)
	default:
		openTag(sb, atom.P)
		writeLines(sb, b.lines, policy)
		closeTag(sb, atom.P)
	}
}

func writeLines(sb *strings.Builder, lines []string, policy EscapePolicy) {
	for i, text := range lines {
		if i > 0 {
			openTag(sb, atom.Br)
		}
		writeInline(sb, parseInline(text), policy)
	}
}

func writeInline(sb *strings.Builder, nodes []node, policy EscapePolicy) {
	for _, n := range nodes {
		switch n.kind {
		case nodeCode:
			openTag(sb, atom.Code)
			sb.WriteString(policy.text(n.text))
			closeTag(sb, atom.Code)
		case nodeStrong:
			openTag(sb, atom.Strong)
			writeInline(sb, n.children, policy)
			closeTag(sb, atom.Strong)
		case nodeEm:
			openTag(sb, atom.Em)
			writeInline(sb, n.children, policy)
			closeTag(sb, atom.Em)
		case nodeLink:
			href, ok := policy.href(n.href)
			if !ok {
				writeInline(sb, n.children, policy)
				continue
			}
			sb.WriteString(`<a href="`)
			sb.WriteString(href)
			sb.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			writeInline(sb, n.children, policy)
			closeTag(sb, atom.A)
		default:
			sb.WriteString(policy.text(n.text))
		}
	}
}

func openTag(sb *strings.Builder, tag atom.Atom) {
	sb.WriteByte('<')
	sb.WriteString(tag.String())
	sb.WriteByte('>')
}

func closeTag(sb *strings.Builder, tag atom.Atom) {
	sb.WriteString("</")
	sb.WriteString(tag.String())
	sb.WriteByte('>')
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > maxHeadingLevel:
		return maxHeadingLevel
	default:
		return level
	}
}
