package site

import (
	"context"

	"github.com/nycb2b/site/internal/articles"
	articlescmd "github.com/nycb2b/site/internal/commands/articles"
	"github.com/nycb2b/site/internal/di"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/pkg/interfaces"
)

// EventService exports the events service contract for consumers of the site package.
type EventService = events.Service

// JobService exports the jobs service contract.
type JobService = jobs.Service

// ArticleService exports the articles service contract.
type ArticleService = articles.Service

// Renderer exports the rich-text renderer.
type Renderer = richtext.Renderer

// Module represents the top level site runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a site module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Render converts rich-text content to an HTML fragment using the default
// escaping renderer.
func Render(content string) string {
	return richtext.Render(content)
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Events returns the configured event service.
func (m *Module) Events() EventService {
	return m.container.EventService()
}

// Jobs returns the configured job service.
func (m *Module) Jobs() JobService {
	return m.container.JobService()
}

// Articles returns the configured article service.
func (m *Module) Articles() ArticleService {
	return m.container.ArticleService()
}

// Renderer returns the renderer built from the render config.
func (m *Module) Renderer() *Renderer {
	return m.container.Renderer()
}

// Logger returns the root module logger.
func (m *Module) Logger() interfaces.Logger {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Logger()
}

// ImportArticles loads markdown files from paths or a directory into the
// article store.
func (m *Module) ImportArticles(ctx context.Context, paths []string, directory string) ([]*articles.Article, error) {
	return m.container.ImportArticles(ctx, articlescmd.ImportArticlesCommand{Paths: paths, Directory: directory})
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
