package events

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const eventNamespace = "event"

// BunEventRepository implements EventRepository with optional caching.
// Lookups by id or slug go through the cache; listings always hit the
// database.
type BunEventRepository struct {
	repo         repository.Repository[*Event]
	lists        repository.Repository[*Event]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunEventRepository creates an event repository without caching.
func NewBunEventRepository(db *bun.DB) *BunEventRepository {
	return NewBunEventRepositoryWithCache(db, nil, nil)
}

// NewBunEventRepositoryWithCache creates an event repository with caching services.
func NewBunEventRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunEventRepository {
	lists := NewEventRepository(db)
	base := lists
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = eventNamespace + cache.KeySeparator
	}
	return &BunEventRepository{repo: base, lists: lists, cacheService: svc, cachePrefix: prefix}
}

func (r *BunEventRepository) Create(ctx context.Context, event *Event) (*Event, error) {
	record, err := r.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	return record, r.invalidate(ctx)
}

func (r *BunEventRepository) Update(ctx context.Context, event *Event) (*Event, error) {
	record, err := r.repo.Update(ctx, event, repository.UpdateByID(event.ID.String()))
	if err != nil {
		return nil, mapRepositoryError(err, "event", event.ID.String())
	}
	return record, r.invalidate(ctx)
}

func (r *BunEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "event", id.String())
	}
	return record, nil
}

func (r *BunEventRepository) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "event", slug)
	}
	return record, nil
}

func (r *BunEventRepository) List(ctx context.Context, filter ListFilter) ([]*Event, error) {
	records, _, err := r.lists.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		if !filter.EndingAfter.IsZero() {
			q = q.Where("COALESCE(?TableAlias.ends_at, ?TableAlias.starts_at) >= ?", filter.EndingAfter)
		}
		return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.starts_at ASC")
	}))
	return records, err
}

func (r *BunEventRepository) UpdatePositions(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	if _, err := r.repo.UpdateMany(ctx, events,
		repository.UpdateColumns("position", "updated_at"),
	); err != nil {
		return err
	}
	return r.invalidate(ctx)
}

func (r *BunEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Event{ID: id}); err != nil {
		return mapRepositoryError(err, "event", id.String())
	}
	return r.invalidate(ctx)
}

func (r *BunEventRepository) invalidate(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
