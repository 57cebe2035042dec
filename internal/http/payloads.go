package http

import (
	"time"

	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
)

type eventPayload struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Location       string     `json:"location,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	URL            string     `json:"url,omitempty"`
	Organizer      string     `json:"organizer,omitempty"`
	SubmitterEmail string     `json:"submitter_email"`
}

func (p eventPayload) input() events.EventInput {
	return events.EventInput{
		Title:          p.Title,
		Description:    p.Description,
		Location:       p.Location,
		StartsAt:       p.StartsAt,
		EndsAt:         p.EndsAt,
		URL:            p.URL,
		Organizer:      p.Organizer,
		SubmitterEmail: p.SubmitterEmail,
	}
}

type eventUpdatePayload struct {
	Slug        *string    `json:"slug,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	ClearEndsAt bool       `json:"clear_ends_at,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Organizer   *string    `json:"organizer,omitempty"`
}

type jobPayload struct {
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	Description    string     `json:"description"`
	ApplyURL       string     `json:"apply_url,omitempty"`
	Salary         string     `json:"salary,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	SubmitterEmail string     `json:"submitter_email"`
}

func (p jobPayload) input() jobs.JobInput {
	return jobs.JobInput{
		Title:          p.Title,
		Company:        p.Company,
		Location:       p.Location,
		EmploymentType: p.EmploymentType,
		Description:    p.Description,
		ApplyURL:       p.ApplyURL,
		Salary:         p.Salary,
		ExpiresAt:      p.ExpiresAt,
		SubmitterEmail: p.SubmitterEmail,
	}
}

type jobUpdatePayload struct {
	Slug           *string    `json:"slug,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Company        *string    `json:"company,omitempty"`
	Location       *string    `json:"location,omitempty"`
	EmploymentType *string    `json:"employment_type,omitempty"`
	Description    *string    `json:"description,omitempty"`
	ApplyURL       *string    `json:"apply_url,omitempty"`
	Salary         *string    `json:"salary,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ClearExpiresAt bool       `json:"clear_expires_at,omitempty"`
}

type articlePayload struct {
	Title          string        `json:"title"`
	Summary        string        `json:"summary,omitempty"`
	Body           string        `json:"body"`
	Format         domain.Format `json:"format,omitempty"`
	Author         string        `json:"author"`
	Tags           []string      `json:"tags,omitempty"`
	SubmitterEmail string        `json:"submitter_email,omitempty"`
}

func (p articlePayload) input() articles.ArticleInput {
	return articles.ArticleInput{
		Title:          p.Title,
		Summary:        p.Summary,
		Body:           p.Body,
		Format:         p.Format,
		Author:         p.Author,
		Tags:           p.Tags,
		SubmitterEmail: p.SubmitterEmail,
	}
}

type articleCreatePayload struct {
	articlePayload
	Slug   string        `json:"slug,omitempty"`
	Status domain.Status `json:"status,omitempty"`
}

type articleUpdatePayload struct {
	Slug    *string        `json:"slug,omitempty"`
	Title   *string        `json:"title,omitempty"`
	Summary *string        `json:"summary,omitempty"`
	Body    *string        `json:"body,omitempty"`
	Format  *domain.Format `json:"format,omitempty"`
	Author  *string        `json:"author,omitempty"`
	Tags    *[]string      `json:"tags,omitempty"`
}

type articleImportPayload struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content"`
}

type moderationPayload struct {
	Note string `json:"note,omitempty"`
}

type reorderPayload struct {
	IDs []string `json:"ids"`
}

type loginPayload struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

type previewPayload struct {
	Content string `json:"content"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

// submissionReceipt acknowledges a public submission awaiting review.
type submissionReceipt struct {
	ID     string        `json:"id"`
	Slug   string        `json:"slug"`
	Status domain.Status `json:"status"`
}
