package richtext

import (
	"regexp"
	"strings"
)

type lineKind uint8

const (
	lineText lineKind = iota
	lineBlank
	lineHeading
	lineQuote
	lineUnordered
	lineOrdered
)

type line struct {
	kind  lineKind
	level int
	text  string
}

var (
	unorderedItem = regexp.MustCompile(`^[*\-•] (.+)$`)
	orderedItem   = regexp.MustCompile(`^(\d+)\. (.+)$`)
)

// maxHeadingLevel is the deepest heading the dialect produces. Deeper
// markers ("####") are plain text so the page keeps its fixed hierarchy.
const maxHeadingLevel = 3

func classify(raw string) line {
	if strings.TrimSpace(raw) == "" {
		return line{kind: lineBlank}
	}

	for level := maxHeadingLevel; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if rest, ok := strings.CutPrefix(raw, prefix); ok {
			if text := strings.TrimSpace(rest); text != "" {
				return line{kind: lineHeading, level: level, text: text}
			}
		}
	}

	if rest, ok := strings.CutPrefix(raw, "> "); ok {
		if text := strings.TrimSpace(rest); text != "" {
			return line{kind: lineQuote, text: text}
		}
	}

	trimmed := strings.TrimLeft(raw, " \t")
	if match := unorderedItem.FindStringSubmatch(trimmed); match != nil {
		if text := strings.TrimSpace(match[1]); text != "" {
			return line{kind: lineUnordered, text: text}
		}
	}
	if match := orderedItem.FindStringSubmatch(trimmed); match != nil {
		if text := strings.TrimSpace(match[2]); text != "" {
			return line{kind: lineOrdered, text: text}
		}
	}

	return line{kind: lineText, text: strings.TrimSpace(raw)}
}

type blockKind uint8

const (
	blockParagraph blockKind = iota
	blockHeading
	blockQuote
	blockList
)

// block is a leaf container: its lines are the only places inline
// constructs are recognised.
type block struct {
	kind    blockKind
	level   int
	ordered bool
	lines   []string
}

func parseBlocks(content string) []block {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var (
		blocks  []block
		current *block
	)
	flush := func() {
		if current != nil && len(current.lines) > 0 {
			blocks = append(blocks, *current)
		}
		current = nil
	}
	// continueWith keeps appending to the open block when it has the same
	// shape, otherwise closes it and opens a new one.
	continueWith := func(kind blockKind, ordered bool, text string) {
		if current == nil || current.kind != kind || current.ordered != ordered {
			flush()
			current = &block{kind: kind, ordered: ordered}
		}
		current.lines = append(current.lines, text)
	}

	for _, raw := range strings.Split(content, "\n") {
		ln := classify(raw)
		switch ln.kind {
		case lineBlank:
			flush()
		case lineHeading:
			flush()
			blocks = append(blocks, block{kind: blockHeading, level: ln.level, lines: []string{ln.text}})
		case lineQuote:
			flush()
			blocks = append(blocks, block{kind: blockQuote, lines: []string{ln.text}})
		case lineUnordered:
			continueWith(blockList, false, ln.text)
		case lineOrdered:
			continueWith(blockList, true, ln.text)
		default:
			continueWith(blockParagraph, false, ln.text)
		}
	}
	flush()

	return blocks
}
