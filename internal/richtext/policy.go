package richtext

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go4.org/bytereplacer"
)

// EscapePolicy selects how source text is written into the generated markup.
type EscapePolicy int

const (
	// EscapeHTML escapes markup-significant characters in text, code spans
	// and attribute values, and drops links whose scheme is not allowed.
	EscapeHTML EscapePolicy = iota
	// LegacyPassthrough writes matched text unescaped.
	LegacyPassthrough
)

// ErrUnknownPolicy is returned by ParsePolicy for unsupported names.
var ErrUnknownPolicy = errors.New("richtext: unknown escape policy")

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var allowedSchemes = map[string]struct{}{
	"http":   {},
	"https":  {},
	"mailto": {},
	"tel":    {},
}

// String returns the configuration name of the policy.
func (p EscapePolicy) String() string {
	switch p {
	case LegacyPassthrough:
		return "legacy"
	default:
		return "escape"
	}
}

// ParsePolicy maps a configuration value onto an EscapePolicy. An empty
// value selects EscapeHTML.
func ParsePolicy(value string) (EscapePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "escape", "escaped", "safe":
		return EscapeHTML, nil
	case "legacy", "raw", "passthrough":
		return LegacyPassthrough, nil
	default:
		return EscapeHTML, fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

func (p EscapePolicy) text(value string) string {
	if p == LegacyPassthrough || value == "" {
		return value
	}
	return string(htmlEscaper.Replace([]byte(value)))
}

// href returns the attribute-ready link target, or false when the target
// must not be rendered as a link.
func (p EscapePolicy) href(target string) (string, bool) {
	if p == LegacyPassthrough {
		return target, true
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "" {
		if _, ok := allowedSchemes[strings.ToLower(parsed.Scheme)]; !ok {
			return "", false
		}
	}
	return p.text(target), true
}
