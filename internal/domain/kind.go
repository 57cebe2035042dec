package domain

import (
	"fmt"
	"strings"
)

// Kind identifies one of the moderated content collections.
type Kind string

const (
	KindEvent   Kind = "event"
	KindJob     Kind = "job"
	KindArticle Kind = "article"
)

// Kinds lists every collection in display order.
func Kinds() []Kind {
	return []Kind{KindEvent, KindJob, KindArticle}
}

// ParseKind accepts singular or plural collection names ("events", "job").
func ParseKind(input string) (Kind, error) {
	value := strings.ToLower(strings.TrimSpace(input))
	switch value {
	case "event", "events":
		return KindEvent, nil
	case "job", "jobs":
		return KindJob, nil
	case "article", "articles", "blog", "post", "posts":
		return KindArticle, nil
	default:
		return "", fmt.Errorf("domain: unknown kind %q", input)
	}
}

// Plural returns the collection name used in URLs.
func (k Kind) Plural() string {
	return string(k) + "s"
}

func (k Kind) String() string {
	return string(k)
}
