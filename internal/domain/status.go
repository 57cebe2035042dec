package domain

import (
	"fmt"
	"strings"
)

// Status is the moderation state persisted on every listing.
type Status string

const (
	// StatusPending marks a public submission waiting for review.
	StatusPending Status = "pending"
	// StatusApproved marks an event or job that is visible on the site.
	StatusApproved Status = "approved"
	// StatusRejected marks a submission the admin declined.
	StatusRejected Status = "rejected"
	// StatusDraft marks an article that is not yet public.
	StatusDraft Status = "draft"
	// StatusPublished marks an article visible on the blog.
	StatusPublished Status = "published"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusDraft:     {},
	StatusPublished: {},
}

// ParseStatus normalises input into a known Status.
func ParseStatus(input string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(input)))
	if _, ok := knownStatuses[status]; !ok {
		return "", fmt.Errorf("domain: unknown status %q", input)
	}
	return status, nil
}

// Public reports whether a record in this status is shown to visitors.
func (s Status) Public() bool {
	return s == StatusApproved || s == StatusPublished
}

func (s Status) String() string {
	return string(s)
}
