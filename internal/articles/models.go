package articles

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// Article is a blog post.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:ar"`

	ID             uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	Slug           string        `bun:"slug,notnull,unique" json:"slug"`
	Title          string        `bun:"title,notnull" json:"title"`
	Summary        string        `bun:"summary" json:"summary,omitempty"`
	Body           string        `bun:"body,notnull" json:"body"`
	Format         domain.Format `bun:"format,notnull,default:'richtext'" json:"format"`
	Author         string        `bun:"author" json:"author,omitempty"`
	Tags           []string      `bun:"tags,type:jsonb" json:"tags,omitempty"`
	SubmitterEmail string        `bun:"submitter_email" json:"submitter_email,omitempty"`
	SourcePath     string        `bun:"source_path" json:"source_path,omitempty"`
	Status         domain.Status `bun:"status,notnull,default:'draft'" json:"status"`
	Position       int           `bun:"position,notnull,default:0" json:"position"`
	PublishedAt    *time.Time    `bun:"published_at,nullzero" json:"published_at,omitempty"`
	ReviewNote     string        `bun:"review_note" json:"review_note,omitempty"`
	ReviewedBy     string        `bun:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `bun:"reviewed_at,nullzero" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// SortTime orders articles on listings: publication time, or creation time
// for unpublished records.
func (a *Article) SortTime() time.Time {
	if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
		return *a.PublishedAt
	}
	return a.CreatedAt
}

func cloneArticle(a *Article) *Article {
	if a == nil {
		return nil
	}
	cloned := *a
	cloned.Tags = slices.Clone(a.Tags)
	if a.PublishedAt != nil {
		v := *a.PublishedAt
		cloned.PublishedAt = &v
	}
	if a.ReviewedAt != nil {
		v := *a.ReviewedAt
		cloned.ReviewedAt = &v
	}
	return &cloned
}
