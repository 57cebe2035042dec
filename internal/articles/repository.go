package articles

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/uptrace/bun"
)

// NewArticleRepository creates the generic repository for articles.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(a *Article) uuid.UUID { return a.ID },
		SetID:              func(a *Article, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(a *Article) string { return a.Slug },
	})
}

// ListFilter narrows article listings. Zero values match everything.
type ListFilter struct {
	Status domain.Status
}

// ArticleRepository exposes persistence operations for articles. Listings
// are ordered by position, newest first within a position.
type ArticleRepository interface {
	Create(ctx context.Context, article *Article) (*Article, error)
	Update(ctx context.Context, article *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context, filter ListFilter) ([]*Article, error)
	UpdatePositions(ctx context.Context, articles []*Article) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when an article cannot be located.
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
