package articlescmd

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/commands"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/markdown"
	"github.com/nycb2b/site/pkg/interfaces"
)

const importOperation = "articles.import"

// ErrMarkdownArticlesDisabled is returned when Markdown articles are turned off.
var ErrMarkdownArticlesDisabled = errors.New("articles command: markdown articles disabled")

var _ command.Commander[ImportArticlesCommand] = (*ImportArticlesHandler)(nil)

// FeatureGates exposes the runtime toggle consulted before importing.
type FeatureGates struct {
	MarkdownEnabled func() bool
}

func (g FeatureGates) markdownEnabled() bool {
	if g.MarkdownEnabled == nil {
		return true
	}
	return g.MarkdownEnabled()
}

// ImportResult lists the records an import run created or refreshed.
type ImportResult struct {
	Imported []*articles.Article
}

// ImportArticlesHandler runs ImportArticlesCommand.
type ImportArticlesHandler struct {
	inner *commands.Handler[ImportArticlesCommand]
}

// NewImportArticlesHandler creates a handler bound to the article service.
// report, when non-nil, receives the imported records.
func NewImportArticlesHandler(service articles.Service, logger interfaces.Logger, gates FeatureGates, report func(ImportResult), opts ...commands.HandlerOption[ImportArticlesCommand]) *ImportArticlesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ImportArticlesCommand) error {
		if !gates.markdownEnabled() {
			return ErrMarkdownArticlesDisabled
		}
		paths, err := collectPaths(msg)
		if err != nil {
			return err
		}

		result := ImportResult{}
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			doc, err := markdown.LoadDocument(path)
			if err != nil {
				return err
			}
			record, err := service.Import(ctx, doc)
			if err != nil {
				return err
			}
			result.Imported = append(result.Imported, record)
		}

		logging.WithFields(baseLogger, map[string]any{
			"imported_count": len(result.Imported),
		}).Info("articles.command.import.completed")
		if report != nil {
			report(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportArticlesCommand]{
		commands.WithLogger[ImportArticlesCommand](baseLogger),
		commands.WithOperation[ImportArticlesCommand](importOperation),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportArticlesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportArticlesCommand].
func (h *ImportArticlesHandler) Execute(ctx context.Context, msg ImportArticlesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func collectPaths(msg ImportArticlesCommand) ([]string, error) {
	paths := append([]string(nil), msg.Paths...)
	dir := strings.TrimSpace(msg.Directory)
	if dir == "" {
		return paths, nil
	}
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return append(paths, found...), nil
}
