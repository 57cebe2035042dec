// Package seed loads the bundled fixture records with stable identifiers so
// repeated runs against the same database are idempotent.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/identity"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/pkg/interfaces"
)

//go:embed fixtures.yaml
var bundled []byte

// Fixtures lists the records to seed.
type Fixtures struct {
	Events   []EventFixture   `yaml:"events"`
	Jobs     []JobFixture     `yaml:"jobs"`
	Articles []ArticleFixture `yaml:"articles"`
}

type EventFixture struct {
	Title       string        `yaml:"title"`
	Slug        string        `yaml:"slug"`
	Description string        `yaml:"description"`
	Location    string        `yaml:"location"`
	Organizer   string        `yaml:"organizer"`
	URL         string        `yaml:"url"`
	StartsIn    time.Duration `yaml:"starts_in"`
	Duration    time.Duration `yaml:"duration"`
}

type JobFixture struct {
	Title          string        `yaml:"title"`
	Slug           string        `yaml:"slug"`
	Company        string        `yaml:"company"`
	Location       string        `yaml:"location"`
	EmploymentType string        `yaml:"employment_type"`
	Description    string        `yaml:"description"`
	ApplyURL       string        `yaml:"apply_url"`
	Salary         string        `yaml:"salary"`
	ExpiresIn      time.Duration `yaml:"expires_in"`
}

type ArticleFixture struct {
	Title   string   `yaml:"title"`
	Slug    string   `yaml:"slug"`
	Summary string   `yaml:"summary"`
	Author  string   `yaml:"author"`
	Tags    []string `yaml:"tags"`
	Body    string   `yaml:"body"`
}

// Bundled parses the fixtures compiled into the binary.
func Bundled() (Fixtures, error) {
	return Parse(bundled)
}

// Parse decodes a fixtures document.
func Parse(data []byte) (Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return Fixtures{}, fmt.Errorf("seed: parse fixtures: %w", err)
	}
	return fixtures, nil
}

// IDQueue is an identity.Generator that hands out queued IDs before falling
// back to random ones.
type IDQueue struct {
	mu     sync.Mutex
	queued []uuid.UUID
}

// Push queues id for the next record created.
func (q *IDQueue) Push(id uuid.UUID) {
	q.mu.Lock()
	q.queued = append(q.queued, id)
	q.mu.Unlock()
}

// Next returns the oldest queued ID or a random one.
func (q *IDQueue) Next() uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queued) == 0 {
		return uuid.New()
	}
	id := q.queued[0]
	q.queued = q.queued[1:]
	return id
}

// Generator adapts the queue for service options.
func (q *IDQueue) Generator() identity.Generator {
	return q.Next
}

// Services are the stores seeded.
type Services struct {
	Events   events.Service
	Jobs     jobs.Service
	Articles articles.Service
}

// Result counts created and skipped records.
type Result struct {
	Created int
	Skipped int
}

// Seeder writes fixtures through the services. IDs must be the generator the
// services were built with.
type Seeder struct {
	Services Services
	IDs      *IDQueue
	Now      func() time.Time
	Logger   interfaces.Logger
}

// Run creates every fixture whose slug is not stored yet.
func (s Seeder) Run(ctx context.Context, fixtures Fixtures) (Result, error) {
	if s.IDs == nil {
		return Result{}, errors.New("seed: id queue required")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	var result Result

	if s.Services.Events != nil {
		for _, fx := range fixtures.Events {
			if _, err := s.Services.Events.GetBySlug(ctx, fx.Slug); err == nil {
				result.Skipped++
				continue
			} else if !isNotFound(err) {
				return result, err
			}
			start := now().Add(fx.StartsIn).Truncate(time.Hour)
			input := events.CreateEventInput{
				EventInput: events.EventInput{
					Title:       fx.Title,
					Description: fx.Description,
					Location:    fx.Location,
					Organizer:   fx.Organizer,
					URL:         fx.URL,
					StartsAt:    start,
				},
				Slug:   fx.Slug,
				Status: domain.StatusApproved,
			}
			if fx.Duration > 0 {
				end := start.Add(fx.Duration)
				input.EndsAt = &end
			}
			s.IDs.Push(identity.RecordUUID(string(domain.KindEvent), fx.Slug))
			if _, err := s.Services.Events.Create(ctx, input); err != nil {
				return result, fmt.Errorf("seed event %s: %w", fx.Slug, err)
			}
			result.Created++
		}
	}

	if s.Services.Jobs != nil {
		for _, fx := range fixtures.Jobs {
			if _, err := s.Services.Jobs.GetBySlug(ctx, fx.Slug); err == nil {
				result.Skipped++
				continue
			} else if !isNotFound(err) {
				return result, err
			}
			input := jobs.CreateJobInput{
				JobInput: jobs.JobInput{
					Title:          fx.Title,
					Company:        fx.Company,
					Location:       fx.Location,
					EmploymentType: fx.EmploymentType,
					Description:    fx.Description,
					ApplyURL:       fx.ApplyURL,
					Salary:         fx.Salary,
				},
				Slug:   fx.Slug,
				Status: domain.StatusApproved,
			}
			if fx.ExpiresIn > 0 {
				expires := now().Add(fx.ExpiresIn)
				input.ExpiresAt = &expires
			}
			s.IDs.Push(identity.RecordUUID(string(domain.KindJob), fx.Slug))
			if _, err := s.Services.Jobs.Create(ctx, input); err != nil {
				return result, fmt.Errorf("seed job %s: %w", fx.Slug, err)
			}
			result.Created++
		}
	}

	if s.Services.Articles != nil {
		for _, fx := range fixtures.Articles {
			if _, err := s.Services.Articles.GetBySlug(ctx, fx.Slug); err == nil {
				result.Skipped++
				continue
			} else if !isNotFound(err) {
				return result, err
			}
			input := articles.CreateArticleInput{
				ArticleInput: articles.ArticleInput{
					Title:   fx.Title,
					Summary: fx.Summary,
					Body:    fx.Body,
					Author:  fx.Author,
					Tags:    fx.Tags,
				},
				Slug:   fx.Slug,
				Status: domain.StatusPublished,
			}
			s.IDs.Push(identity.RecordUUID(string(domain.KindArticle), fx.Slug))
			if _, err := s.Services.Articles.Create(ctx, input); err != nil {
				return result, fmt.Errorf("seed article %s: %w", fx.Slug, err)
			}
			result.Created++
		}
	}

	if s.Logger != nil {
		s.Logger.Info("seed.completed", "created", result.Created, "skipped", result.Skipped)
	}
	return result, nil
}

func isNotFound(err error) bool {
	var eventMissing *events.NotFoundError
	var jobMissing *jobs.NotFoundError
	var articleMissing *articles.NotFoundError
	return errors.As(err, &eventMissing) || errors.As(err, &jobMissing) || errors.As(err, &articleMissing)
}
