package jobs

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// NewJobRepository creates the generic repository for job postings.
func NewJobRepository(db *bun.DB) repository.Repository[*Job] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Job]{
		NewRecord:          func() *Job { return &Job{} },
		GetID:              func(j *Job) uuid.UUID { return j.ID },
		SetID:              func(j *Job, id uuid.UUID) { j.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(j *Job) string { return j.Slug },
	})
}

// ListFilter narrows job listings. Zero values match everything.
type ListFilter struct {
	Status domain.Status
	// OpenAt drops postings that expired before the instant.
	OpenAt time.Time
}

// JobRepository exposes persistence operations for job postings. Listings
// are ordered by position, newest first within a position.
type JobRepository interface {
	Create(ctx context.Context, job *Job) (*Job, error)
	Update(ctx context.Context, job *Job) (*Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	GetBySlug(ctx context.Context, slug string) (*Job, error)
	List(ctx context.Context, filter ListFilter) ([]*Job, error)
	UpdatePositions(ctx context.Context, jobs []*Job) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a job posting cannot be located.
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
