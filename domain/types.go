package domain

import internaldomain "github.com/nycb2b/site/internal/domain"

// Status represents moderation states for site records.
type Status = internaldomain.Status

const (
	// StatusPending marks a public submission awaiting review.
	StatusPending = internaldomain.StatusPending
	// StatusApproved identifies events and jobs visible to the public.
	StatusApproved = internaldomain.StatusApproved
	// StatusRejected marks a submission declined by an admin.
	StatusRejected = internaldomain.StatusRejected
	// StatusDraft marks an article still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies articles visible to the public.
	StatusPublished = internaldomain.StatusPublished
)

// Kind identifies a record collection.
type Kind = internaldomain.Kind

const (
	KindEvent   = internaldomain.KindEvent
	KindJob     = internaldomain.KindJob
	KindArticle = internaldomain.KindArticle
)

// Format identifies how an article body is written.
type Format = internaldomain.Format

const (
	FormatRichText = internaldomain.FormatRichText
	FormatMarkdown = internaldomain.FormatMarkdown
)

// ParseKind accepts singular or plural collection names.
func ParseKind(input string) (Kind, error) {
	return internaldomain.ParseKind(input)
}
