package articles

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryArticleRepository provides an in-memory implementation of ArticleRepository.
type MemoryArticleRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Article
	bySlug map[string]uuid.UUID
}

// NewMemoryArticleRepository constructs an empty memory-backed article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		byID:   make(map[uuid.UUID]*Article),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (r *MemoryArticleRepository) Create(_ context.Context, article *Article) (*Article, error) {
	if article == nil {
		return nil, nil
	}
	cloned := cloneArticle(article)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlug[cloned.Slug]; exists {
		return nil, ErrSlugExists
	}
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneArticle(cloned), nil
}

func (r *MemoryArticleRepository) Update(_ context.Context, article *Article) (*Article, error) {
	if article == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[article.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: article.ID.String()}
	}
	if owner, taken := r.bySlug[article.Slug]; taken && owner != article.ID {
		return nil, ErrSlugExists
	}
	delete(r.bySlug, existing.Slug)

	cloned := cloneArticle(article)
	r.byID[cloned.ID] = cloned
	r.bySlug[cloned.Slug] = cloned.ID
	return cloneArticle(cloned), nil
}

func (r *MemoryArticleRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(record), nil
}

func (r *MemoryArticleRepository) GetBySlug(_ context.Context, slug string) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: slug}
	}
	return cloneArticle(r.byID[id]), nil
}

func (r *MemoryArticleRepository) List(_ context.Context, filter ListFilter) ([]*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Article, 0, len(r.byID))
	for _, record := range r.byID {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		out = append(out, cloneArticle(record))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].SortTime().After(out[j].SortTime())
	})
	return out, nil
}

func (r *MemoryArticleRepository) UpdatePositions(_ context.Context, articles []*Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, article := range articles {
		if _, ok := r.byID[article.ID]; !ok {
			return &NotFoundError{Resource: "article", Key: article.ID.String()}
		}
	}
	for _, article := range articles {
		record := r.byID[article.ID]
		record.Position = article.Position
		record.UpdatedAt = article.UpdatedAt
	}
	return nil
}

func (r *MemoryArticleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	delete(r.bySlug, record.Slug)
	delete(r.byID, id)
	return nil
}
