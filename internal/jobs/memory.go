package jobs

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryJobRepository provides an in-memory implementation of JobRepository.
type MemoryJobRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Job
	bySlug map[string]uuid.UUID
}

// NewMemoryJobRepository constructs an empty memory-backed job repository.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		byID:   make(map[uuid.UUID]*Job),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryJobRepository) Create(_ context.Context, job *Job) (*Job, error) {
	if job == nil {
		return nil, nil
	}
	cloned := cloneJob(job)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[cloned.Slug]; exists {
		return nil, ErrSlugExists
	}
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneJob(cloned), nil
}

func (r *MemoryJobRepository) Update(_ context.Context, job *Job) (*Job, error) {
	if job == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[job.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "job", Key: job.ID.String()}
	}
	if owner, taken := r.bySlug[job.Slug]; taken && owner != job.ID {
		return nil, ErrSlugExists
	}
	delete(r.bySlug, existing.Slug)

	cloned := cloneJob(job)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneJob(cloned), nil
}

func (r *MemoryJobRepository) GetByID(_ context.Context, id uuid.UUID) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "job", Key: id.String()}
	}
	return cloneJob(record), nil
}

func (r *MemoryJobRepository) GetBySlug(_ context.Context, slug string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "job", Key: slug}
	}
	return cloneJob(r.byID[id]), nil
}

func (r *MemoryJobRepository) List(_ context.Context, filter ListFilter) ([]*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Job, 0, len(r.byID))
	for _, record := range r.byID {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if !filter.OpenAt.IsZero() && record.Expired(filter.OpenAt) {
			continue
		}
		out = append(out, cloneJob(record))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryJobRepository) UpdatePositions(_ context.Context, jobs []*Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, job := range jobs {
		if _, ok := r.byID[job.ID]; !ok {
			return &NotFoundError{Resource: "job", Key: job.ID.String()}
		}
	}
	for _, job := range jobs {
		record := r.byID[job.ID]
		record.Position = job.Position
		record.UpdatedAt = job.UpdatedAt
	}
	return nil
}

func (r *MemoryJobRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "job", Key: id.String()}
	}
	delete(r.bySlug, record.Slug)
	delete(r.byID, id)
	return nil
}
