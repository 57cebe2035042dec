package jobs

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

const jobNamespace = "job"

// BunJobRepository implements JobRepository with optional caching.
// Lookups by id or slug go through the cache; listings always hit the
// database.
type BunJobRepository struct {
	repo         repository.Repository[*Job]
	lists        repository.Repository[*Job]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunJobRepository creates a job repository without caching.
func NewBunJobRepository(db *bun.DB) *BunJobRepository {
	return NewBunJobRepositoryWithCache(db, nil, nil)
}

// NewBunJobRepositoryWithCache creates a job repository with caching services.
func NewBunJobRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunJobRepository {
	lists := NewJobRepository(db)
	base := lists
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = jobNamespace + cache.KeySeparator
	}
	return &BunJobRepository{repo: base, lists: lists, cacheService: svc, cachePrefix: prefix}
}

func (r *BunJobRepository) Create(ctx context.Context, job *Job) (*Job, error) {
	record, err := r.repo.Create(ctx, job)
	if err != nil {
		return nil, err
	}
	return record, r.invalidate(ctx)
}

func (r *BunJobRepository) Update(ctx context.Context, job *Job) (*Job, error) {
	record, err := r.repo.Update(ctx, job, repository.UpdateByID(job.ID.String()))
	if err != nil {
		return nil, mapRepositoryError(err, "job", job.ID.String())
	}
	return record, r.invalidate(ctx)
}

func (r *BunJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "job", id.String())
	}
	return record, nil
}

func (r *BunJobRepository) GetBySlug(ctx context.Context, slug string) (*Job, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "job", slug)
	}
	return record, nil
}

func (r *BunJobRepository) List(ctx context.Context, filter ListFilter) ([]*Job, error) {
	records, _, err := r.lists.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		if !filter.OpenAt.IsZero() {
			q = q.Where("(?TableAlias.expires_at IS NULL OR ?TableAlias.expires_at >= ?)", filter.OpenAt)
		}
		return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.created_at DESC")
	}))
	return records, err
}

func (r *BunJobRepository) UpdatePositions(ctx context.Context, jobs []*Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if _, err := r.repo.UpdateMany(ctx, jobs,
		repository.UpdateColumns("position", "updated_at"),
	); err != nil {
		return err
	}
	return r.invalidate(ctx)
}

func (r *BunJobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Job{ID: id}); err != nil {
		return mapRepositoryError(err, "job", id.String())
	}
	return r.invalidate(ctx)
}

func (r *BunJobRepository) invalidate(ctx context.Context) error {
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
