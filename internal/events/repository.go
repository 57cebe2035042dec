package events

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// NewEventRepository creates the generic repository for events.
func NewEventRepository(db *bun.DB) repository.Repository[*Event] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Event]{
		NewRecord:          func() *Event { return &Event{} },
		GetID:              func(e *Event) uuid.UUID { return e.ID },
		SetID:              func(e *Event, id uuid.UUID) { e.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(e *Event) string { return e.Slug },
	})
}

// ListFilter narrows event listings. Zero values match everything.
type ListFilter struct {
	Status domain.Status
	// EndingAfter keeps events whose end (or start when open ended) is at or
	// after the instant.
	EndingAfter time.Time
}

// EventRepository exposes persistence operations for events. Listings are
// ordered by position then start time.
type EventRepository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	Update(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]*Event, error)
	UpdatePositions(ctx context.Context, events []*Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when an event cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
