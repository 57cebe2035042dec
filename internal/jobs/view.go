package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
)

// View is the public representation of a posting.
type View struct {
	ID              uuid.UUID     `json:"id"`
	Slug            string        `json:"slug"`
	Title           string        `json:"title"`
	Company         string        `json:"company"`
	Location        string        `json:"location,omitempty"`
	EmploymentType  string        `json:"employment_type,omitempty"`
	DescriptionHTML string        `json:"description_html"`
	ApplyURL        string        `json:"apply_url,omitempty"`
	Salary          string        `json:"salary,omitempty"`
	ExpiresAt       *time.Time    `json:"expires_at,omitempty"`
	PostedAt        time.Time     `json:"posted_at"`
	URL             string        `json:"url,omitempty"`
	Status          domain.Status `json:"status"`
	Position        int           `json:"position"`
}

func (s *service) Render(job *Job) (*View, error) {
	if job == nil {
		return nil, nil
	}
	view := &View{
		ID:              job.ID,
		Slug:            job.Slug,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		EmploymentType:  job.EmploymentType,
		DescriptionHTML: s.renderer.Render(job.Description),
		ApplyURL:        job.ApplyURL,
		Salary:          job.Salary,
		ExpiresAt:       normalizeTime(job.ExpiresAt),
		PostedAt:        job.CreatedAt,
		Status:          job.Status,
		Position:        job.Position,
	}
	if s.links != nil {
		url, err := s.links.DetailURL(string(domain.KindJob), job.Slug)
		if err != nil {
			return nil, err
		}
		view.URL = url
	}
	return view, nil
}

func (s *service) RenderAll(jobs []*Job) ([]*View, error) {
	views := make([]*View, 0, len(jobs))
	for _, job := range jobs {
		view, err := s.Render(job)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
