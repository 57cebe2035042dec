package articles

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

const articleNamespace = "article"

// BunArticleRepository implements ArticleRepository with optional caching.
// Lookups by id or slug go through the cache; listings always hit the
// database.
type BunArticleRepository struct {
	repo         repository.Repository[*Article]
	lists        repository.Repository[*Article]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunArticleRepository creates an article repository without caching.
func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return NewBunArticleRepositoryWithCache(db, nil, nil)
}

// NewBunArticleRepositoryWithCache creates an article repository with caching services.
func NewBunArticleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunArticleRepository {
	lists := NewArticleRepository(db)
	base := lists
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = articleNamespace + cache.KeySeparator
	}
	return &BunArticleRepository{repo: base, lists: lists, cacheService: svc, cachePrefix: prefix}
}

func (r *BunArticleRepository) Create(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Create(ctx, article)
	if err != nil {
		return nil, err
	}
	return record, r.invalidate(ctx)
}

func (r *BunArticleRepository) Update(ctx context.Context, article *Article) (*Article, error) {
	record, err := r.repo.Update(ctx, article, repository.UpdateByID(article.ID.String()))
	if err != nil {
		return nil, mapRepositoryError(err, "article", article.ID.String())
	}
	return record, r.invalidate(ctx)
}

func (r *BunArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return record, nil
}

func (r *BunArticleRepository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "article", slug)
	}
	return record, nil
}

func (r *BunArticleRepository) List(ctx context.Context, filter ListFilter) ([]*Article, error) {
	records, _, err := r.lists.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		return q.OrderExpr("?TableAlias.position ASC, COALESCE(?TableAlias.published_at, ?TableAlias.created_at) DESC")
	}))
	return records, err
}

func (r *BunArticleRepository) UpdatePositions(ctx context.Context, articles []*Article) error {
	if len(articles) == 0 {
		return nil
	}
	if _, err := r.repo.UpdateMany(ctx, articles,
		repository.UpdateColumns("position", "updated_at"),
	); err != nil {
		return err
	}
	return r.invalidate(ctx)
}

func (r *BunArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Article{ID: id}); err != nil {
		return mapRepositoryError(err, "article", id.String())
	}
	return r.invalidate(ctx)
}

func (r *BunArticleRepository) invalidate(ctx context.Context) error {
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
