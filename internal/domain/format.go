package domain

import (
	"fmt"
	"strings"
)

// Format is the source dialect of a stored body.
type Format string

const (
	// FormatRichText is the line-oriented dialect edited in the admin forms.
	FormatRichText Format = "richtext"
	// FormatMarkdown is full markdown, used for imported articles.
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps input onto a Format. Empty input selects FormatRichText.
func ParseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "richtext", "rich", "text":
		return FormatRichText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("domain: unknown format %q", input)
	}
}
