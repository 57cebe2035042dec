package articlescmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/testsupport"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newArticleService() articles.Service {
	return articles.NewService(
		articles.NewMemoryArticleRepository(),
		articles.WithIDGenerator(testsupport.SequentialIDs()),
		articles.WithNow(testsupport.FixedClock(time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC))),
	)
}

func TestImportArticlesHandlerWalksDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "b-second.md", "---\ntitle: Second Post\ndraft: false\n---\nHello")
	writeFile(t, dir, "nested/a-first.md", "---\ntitle: First Post\ndraft: true\n---\nDraft body")
	writeFile(t, dir, "notes.txt", "ignored")

	svc := newArticleService()
	var reported ImportResult
	handler := NewImportArticlesHandler(svc, logging.NoOp(), FeatureGates{}, func(result ImportResult) {
		reported = result
	})

	if err := handler.Execute(ctx, ImportArticlesCommand{Directory: dir}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(reported.Imported) != 2 {
		t.Fatalf("expected 2 imported articles, got %d", len(reported.Imported))
	}

	second, err := svc.GetBySlug(ctx, "second-post")
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if second.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %q", second.Status)
	}
	first, err := svc.GetBySlug(ctx, "first-post")
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if first.Status != domain.StatusDraft {
		t.Fatalf("expected draft, got %q", first.Status)
	}
}

func TestImportArticlesHandlerFeatureDisabled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "post.md", "---\ntitle: Post\n---\nBody")

	handler := NewImportArticlesHandler(newArticleService(), nil, FeatureGates{
		MarkdownEnabled: func() bool { return false },
	}, nil)
	err := handler.Execute(context.Background(), ImportArticlesCommand{Paths: []string{path}})
	if !errors.Is(err, ErrMarkdownArticlesDisabled) {
		t.Fatalf("expected ErrMarkdownArticlesDisabled, got %v", err)
	}
}

func TestImportArticlesCommandRequiresSource(t *testing.T) {
	handler := NewImportArticlesHandler(newArticleService(), nil, FeatureGates{}, nil)
	err := handler.Execute(context.Background(), ImportArticlesCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
