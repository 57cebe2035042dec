package links

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/nycb2b/site/internal/domain"
)

const (
	groupName = "site"
	slugParam = "slug"
)

var ErrRouteUnavailable = errors.New("links: route unavailable")

// DefaultRoutes maps route names to public page paths.
func DefaultRoutes() map[string]string {
	return map[string]string{
		"event":    "/events/:slug",
		"job":      "/jobs/:slug",
		"article":  "/blog/:slug",
		"events":   "/events",
		"jobs":     "/jobs",
		"articles": "/blog",
	}
}

// Resolver builds canonical public URLs for listings.
type Resolver struct {
	manager *urlkit.RouteManager
}

// NewResolver builds a resolver rooted at baseURL. Custom routes override the
// defaults by name.
func NewResolver(baseURL string, routes map[string]string) *Resolver {
	paths := DefaultRoutes()
	for name, path := range routes {
		paths[name] = path
	}
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    groupName,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths:   paths,
			},
		},
	})
	return &Resolver{manager: manager}
}

// Detail returns the page URL of a single record.
func (r *Resolver) Detail(kind domain.Kind, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", fmt.Errorf("%w: %s without slug", ErrRouteUnavailable, kind)
	}
	return r.build(string(kind), map[string]any{slugParam: slug}, nil)
}

// Listing returns the index URL for kind with optional query values.
func (r *Resolver) Listing(kind domain.Kind, query map[string]string) (string, error) {
	return r.build(kind.Plural(), nil, query)
}

func (r *Resolver) build(route string, params map[string]any, query map[string]string) (url string, err error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("%w: resolver not configured", ErrRouteUnavailable)
	}
	defer func() {
		if rec := recover(); rec != nil {
			url = ""
			err = fmt.Errorf("%w: %s: %v", ErrRouteUnavailable, route, rec)
		}
	}()

	builder := r.manager.Group(groupName).Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	for key, value := range query {
		builder.WithQuery(key, value)
	}
	return builder.Build()
}

// DetailURL satisfies interfaces.LinkResolver.
func (r *Resolver) DetailURL(kind, slug string) (string, error) {
	parsed, err := domain.ParseKind(kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}
	return r.Detail(parsed, slug)
}
