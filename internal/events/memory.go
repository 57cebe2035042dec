package events

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryEventRepository provides an in-memory implementation of EventRepository.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Event
	bySlug map[string]uuid.UUID
}

// NewMemoryEventRepository constructs an empty memory-backed event repository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		byID:   make(map[uuid.UUID]*Event),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *Event) (*Event, error) {
	if event == nil {
		return nil, nil
	}
	cloned := cloneEvent(event)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[cloned.Slug]; exists {
		return nil, ErrSlugExists
	}
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneEvent(cloned), nil
}

func (r *MemoryEventRepository) Update(_ context.Context, event *Event) (*Event, error) {
	if event == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[event.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: event.ID.String()}
	}
	if owner, taken := r.bySlug[event.Slug]; taken && owner != event.ID {
		return nil, ErrSlugExists
	}
	delete(r.bySlug, existing.Slug)

	cloned := cloneEvent(event)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneEvent(cloned), nil
}

func (r *MemoryEventRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: id.String()}
	}
	return cloneEvent(record), nil
}

func (r *MemoryEventRepository) GetBySlug(_ context.Context, slug string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: slug}
	}
	return cloneEvent(r.byID[id]), nil
}

func (r *MemoryEventRepository) List(_ context.Context, filter ListFilter) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Event, 0, len(r.byID))
	for _, record := range r.byID {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if !filter.EndingAfter.IsZero() && record.EndOrStart().Before(filter.EndingAfter) {
			continue
		}
		out = append(out, cloneEvent(record))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].StartsAt.Before(out[j].StartsAt)
	})
	return out, nil
}

func (r *MemoryEventRepository) UpdatePositions(_ context.Context, events []*Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range events {
		if _, ok := r.byID[event.ID]; !ok {
			return &NotFoundError{Resource: "event", Key: event.ID.String()}
		}
	}
	for _, event := range events {
		record := r.byID[event.ID]
		record.Position = event.Position
		record.UpdatedAt = event.UpdatedAt
	}
	return nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "event", Key: id.String()}
	}
	delete(r.bySlug, record.Slug)
	delete(r.byID, id)
	return nil
}
