package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
)

// View is the public representation of an event with its description
// rendered to HTML.
type View struct {
	ID              uuid.UUID     `json:"id"`
	Slug            string        `json:"slug"`
	Title           string        `json:"title"`
	DescriptionHTML string        `json:"description_html"`
	Location        string        `json:"location,omitempty"`
	StartsAt        time.Time     `json:"starts_at"`
	EndsAt          *time.Time    `json:"ends_at,omitempty"`
	Organizer       string        `json:"organizer,omitempty"`
	Link            string        `json:"link,omitempty"`
	URL             string        `json:"url,omitempty"`
	Status          domain.Status `json:"status"`
	Position        int           `json:"position"`
}

func (s *service) Render(event *Event) (*View, error) {
	if event == nil {
		return nil, nil
	}
	view := &View{
		ID:              event.ID,
		Slug:            event.Slug,
		Title:           event.Title,
		DescriptionHTML: s.renderer.Render(event.Description),
		Location:        event.Location,
		StartsAt:        event.StartsAt,
		EndsAt:          cloneTime(event.EndsAt),
		Organizer:       event.Organizer,
		Link:            event.URL,
		Status:          event.Status,
		Position:        event.Position,
	}
	if s.links != nil {
		url, err := s.links.DetailURL(string(domain.KindEvent), event.Slug)
		if err != nil {
			return nil, err
		}
		view.URL = url
	}
	return view, nil
}

func (s *service) RenderAll(events []*Event) ([]*View, error) {
	views := make([]*View, 0, len(events))
	for _, event := range events {
		view, err := s.Render(event)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
