package articles

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
)

// View is the public representation of an article with its body rendered
// according to its format.
type View struct {
	ID          uuid.UUID     `json:"id"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	BodyHTML    string        `json:"body_html"`
	Format      domain.Format `json:"format"`
	Author      string        `json:"author,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	URL         string        `json:"url,omitempty"`
	Status      domain.Status `json:"status"`
	Position    int           `json:"position"`
}

func (s *service) Render(article *Article) (*View, error) {
	if article == nil {
		return nil, nil
	}
	body, err := s.bodies.Render(article.Format, article.Body)
	if err != nil {
		return nil, err
	}
	view := &View{
		ID:       article.ID,
		Slug:     article.Slug,
		Title:    article.Title,
		Summary:  article.Summary,
		BodyHTML: body,
		Format:   article.Format,
		Author:   article.Author,
		Tags:     slices.Clone(article.Tags),
		Status:   article.Status,
		Position: article.Position,
	}
	if article.PublishedAt != nil {
		publishedAt := *article.PublishedAt
		view.PublishedAt = &publishedAt
	}
	if s.links != nil {
		url, err := s.links.DetailURL(string(domain.KindArticle), article.Slug)
		if err != nil {
			return nil, err
		}
		view.URL = url
	}
	return view, nil
}

func (s *service) RenderAll(articles []*Article) ([]*View, error) {
	views := make([]*View, 0, len(articles))
	for _, article := range articles {
		view, err := s.Render(article)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
