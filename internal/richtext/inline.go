package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// unit is one position of a leaf line after code masking: either a single
// rune or a whole code span that later rules cannot see into. text holds
// the source bytes, so invalid UTF-8 passes through unchanged.
type unit struct {
	r      rune
	text   string
	isCode bool
}

type nodeKind uint8

const (
	nodeText nodeKind = iota
	nodeCode
	nodeStrong
	nodeEm
	nodeLink
)

type node struct {
	kind     nodeKind
	text     string
	href     string
	children []node
}

func maskCode(text string) []unit {
	units := make([]unit, 0, len(text))
	for i := 0; i < len(text); {
		if text[i] == '`' {
			if end := strings.IndexByte(text[i+1:], '`'); end > 0 {
				units = append(units, unit{text: text[i+1 : i+1+end], isCode: true})
				i += end + 2
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		units = append(units, unit{r: r, text: text[i : i+size]})
		i += size
	}
	return units
}

func parseInline(text string) []node {
	return scan(maskCode(text))
}

type closerKind uint8

const (
	closeBracket closerKind = iota
	closeParen
	targetBreak
	closeStrongStar
	closeStrongUnderscore
	closeEmStar
	closeEmUnderscore
	closerKinds
)

// closerIndex remembers a forward search for one closer kind. Openers are
// visited left to right, so each search starts at or after the previous one
// and every position is examined at most once per scanner.
type closerIndex struct {
	next  int
	found int
	done  bool
}

type scanner struct {
	units   []unit
	nodes   []node
	buf     strings.Builder
	closers [closerKinds]closerIndex
}

func scan(units []unit) []node {
	s := &scanner{units: units}
	for k := range s.closers {
		s.closers[k].found = -1
	}
	for i := 0; i < len(units); {
		u := units[i]
		switch {
		case u.isCode:
			s.push(node{kind: nodeCode, text: u.text})
			i++
		case u.r == '[':
			i = s.link(i)
		case u.r == '*' || u.r == '_':
			i = s.emphasis(i)
		default:
			s.buf.WriteString(u.text)
			i++
		}
	}
	s.flush()
	return s.nodes
}

func (s *scanner) flush() {
	if s.buf.Len() == 0 {
		return
	}
	s.nodes = append(s.nodes, node{kind: nodeText, text: s.buf.String()})
	s.buf.Reset()
}

func (s *scanner) push(n node) {
	s.flush()
	s.nodes = append(s.nodes, n)
}

func (s *scanner) literal(from, to int) int {
	for _, u := range s.units[from:to] {
		s.buf.WriteString(u.text)
	}
	return to
}

func (s *scanner) runeAt(i int) (rune, bool) {
	if i < 0 || i >= len(s.units) || s.units[i].isCode {
		return 0, false
	}
	return s.units[i].r, true
}

func (s *scanner) is(i int, r rune) bool {
	got, ok := s.runeAt(i)
	return ok && got == r
}

func (s *scanner) isSpace(i int) bool {
	r, ok := s.runeAt(i)
	return ok && unicode.IsSpace(r)
}

func (s *scanner) isWord(i int) bool {
	r, ok := s.runeAt(i)
	return ok && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// find returns the first position at or after from that closes kind, or -1.
func (s *scanner) find(kind closerKind, from int) int {
	c := &s.closers[kind]
	if c.found >= from {
		return c.found
	}
	if c.done {
		return -1
	}
	for j := max(from, c.next); j < len(s.units); j++ {
		if s.closes(kind, j) {
			c.found, c.next = j, j+1
			return j
		}
	}
	c.next, c.done = len(s.units), true
	return -1
}

func (s *scanner) closes(kind closerKind, j int) bool {
	switch kind {
	case closeBracket:
		return s.is(j, ']')
	case closeParen:
		return s.is(j, ')')
	case targetBreak:
		return s.units[j].isCode || unicode.IsSpace(s.units[j].r)
	case closeStrongStar:
		return s.strongCloses(j, '*')
	case closeStrongUnderscore:
		return s.strongCloses(j, '_')
	case closeEmStar:
		return s.emCloses(j, '*')
	case closeEmUnderscore:
		return s.emCloses(j, '_')
	}
	return false
}

// strongCloses reports whether the pair at j closes strong emphasis. A run
// of exactly three delimiters closes with its last pair so the first one is
// left to the content; any other run closes with its leading pair. The run
// must not follow whitespace.
func (s *scanner) strongCloses(j int, delim rune) bool {
	if !s.is(j, delim) || !s.is(j+1, delim) {
		return false
	}
	if s.is(j-1, delim) {
		if s.is(j-2, delim) || s.is(j+2, delim) || s.isSpace(j-2) {
			return false
		}
	} else {
		if s.is(j+2, delim) && !s.is(j+3, delim) {
			return false
		}
		if s.isSpace(j - 1) {
			return false
		}
	}
	return delim != '_' || !s.isWord(j+2)
}

// emCloses reports whether a lone delimiter at j closes emphasis. Delimiters
// belonging to a longer run never close it.
func (s *scanner) emCloses(j int, delim rune) bool {
	if !s.is(j, delim) || s.is(j-1, delim) || s.is(j+1, delim) || s.isSpace(j-1) {
		return false
	}
	return delim != '_' || !s.isWord(j+1)
}

// link matches [label](target) where the label is the text up to the first
// closing bracket and the target is up to the first closing parenthesis.
func (s *scanner) link(start int) int {
	labelEnd := s.find(closeBracket, start+1)
	if labelEnd <= start+1 || !s.is(labelEnd+1, '(') {
		return s.literal(start, start+1)
	}

	targetStart := labelEnd + 2
	targetEnd := s.find(closeParen, targetStart)
	if targetEnd <= targetStart {
		return s.literal(start, start+1)
	}
	if brk := s.find(targetBreak, targetStart); brk >= 0 && brk < targetEnd {
		return s.literal(start, start+1)
	}

	var target strings.Builder
	for _, u := range s.units[targetStart:targetEnd] {
		target.WriteString(u.text)
	}
	s.push(node{
		kind:     nodeLink,
		href:     target.String(),
		children: scan(s.units[start+1 : labelEnd]),
	})
	return targetEnd + 1
}

func (s *scanner) emphasis(start int) int {
	delim := s.units[start].r
	if s.is(start+1, delim) {
		return s.strong(start, delim)
	}
	return s.em(start, delim)
}

// strong closes on the first later delimiter run that yields valid
// content. A double run that cannot close stays literal as a whole.
func (s *scanner) strong(start int, delim rune) int {
	open := start + 2
	if open >= len(s.units) || s.isSpace(open) {
		return s.literal(start, open)
	}
	if delim == '_' && s.isWord(start-1) {
		return s.literal(start, open)
	}
	kind := closeStrongStar
	if delim == '_' {
		kind = closeStrongUnderscore
	}
	end := s.find(kind, open+1)
	if end < 0 {
		return s.literal(start, open)
	}
	s.push(node{kind: nodeStrong, children: scan(s.units[open:end])})
	return end + 2
}

// em handles a lone delimiter. Delimiters belonging to a double run are
// never used to open or close emphasis.
func (s *scanner) em(start int, delim rune) int {
	open := start + 1
	if s.is(start-1, delim) || open >= len(s.units) || s.isSpace(open) {
		return s.literal(start, open)
	}
	if delim == '_' && s.isWord(start-1) {
		return s.literal(start, open)
	}
	kind := closeEmStar
	if delim == '_' {
		kind = closeEmUnderscore
	}
	end := s.find(kind, open+1)
	if end < 0 {
		return s.literal(start, open)
	}
	s.push(node{kind: nodeEm, children: scan(s.units[open:end])})
	return end + 1
}
