package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// Event is a community event listing.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID             uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	Slug           string        `bun:"slug,notnull,unique" json:"slug"`
	Title          string        `bun:"title,notnull" json:"title"`
	Description    string        `bun:"description,notnull" json:"description"`
	Location       string        `bun:"location" json:"location,omitempty"`
	StartsAt       time.Time     `bun:"starts_at,notnull" json:"starts_at"`
	EndsAt         *time.Time    `bun:"ends_at,nullzero" json:"ends_at,omitempty"`
	URL            string        `bun:"url" json:"url,omitempty"`
	Organizer      string        `bun:"organizer" json:"organizer,omitempty"`
	SubmitterEmail string        `bun:"submitter_email" json:"submitter_email,omitempty"`
	Status         domain.Status `bun:"status,notnull,default:'pending'" json:"status"`
	Position       int           `bun:"position,notnull,default:0" json:"position"`
	ReviewNote     string        `bun:"review_note" json:"review_note,omitempty"`
	ReviewedBy     string        `bun:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `bun:"reviewed_at,nullzero" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// EndOrStart is the instant after which the event is considered past.
func (e *Event) EndOrStart() time.Time {
	if e.EndsAt != nil && !e.EndsAt.IsZero() {
		return *e.EndsAt
	}
	return e.StartsAt
}

func cloneEvent(e *Event) *Event {
	if e == nil {
		return nil
	}
	cloned := *e
	cloned.EndsAt = cloneTime(e.EndsAt)
	cloned.ReviewedAt = cloneTime(e.ReviewedAt)
	return &cloned
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
