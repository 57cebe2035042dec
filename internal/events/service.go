package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/internal/workflow"
	"github.com/nycb2b/site/pkg/interfaces"
)

// Service exposes event listing and moderation capabilities.
type Service interface {
	Submit(ctx context.Context, input EventInput) (*Event, error)
	Create(ctx context.Context, input CreateEventInput) (*Event, error)
	Get(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	Update(ctx context.Context, input UpdateEventInput) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublic(ctx context.Context) ([]*Event, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*Event, error)

	Moderate(ctx context.Context, input domain.ModerationInput) (*Event, error)
	Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Event, error)
	Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Event, error)
	Reorder(ctx context.Context, ids []uuid.UUID) ([]*Event, error)

	Render(event *Event) (*View, error)
	RenderAll(events []*Event) ([]*View, error)
}

// EventInput carries the fields a visitor submits.
type EventInput struct {
	Title          string
	Description    string
	Location       string
	StartsAt       time.Time
	EndsAt         *time.Time
	URL            string
	Organizer      string
	SubmitterEmail string
}

// CreateEventInput is used by admins. Slug and Status are optional; the
// status defaults to approved.
type CreateEventInput struct {
	EventInput
	Slug   string
	Status domain.Status
}

// UpdateEventInput patches an event. Nil fields are left untouched.
type UpdateEventInput struct {
	ID          uuid.UUID
	Slug        *string
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ClearEndsAt bool
	URL         *string
	Organizer   *string
}

var (
	ErrRepositoryRequired  = errors.New("events: repository required")
	ErrIDRequired          = errors.New("events: id required")
	ErrTitleRequired       = errors.New("events: title required")
	ErrDescriptionRequired = errors.New("events: description required")
	ErrStartRequired       = errors.New("events: start time required")
	ErrEndBeforeStart      = errors.New("events: end time precedes start time")
	ErrSlugInvalid         = errors.New("events: slug invalid")
	ErrSlugExists          = errors.New("events: slug already exists")
	ErrStatusInvalid       = errors.New("events: status not valid for events")
	ErrReorderEmpty        = errors.New("events: reorder requires at least one id")
	ErrReorderDuplicate    = errors.New("events: reorder ids must be unique")
)

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithIDGenerator overrides the default ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWorkflowEngine overrides the moderation engine.
func WithWorkflowEngine(engine interfaces.WorkflowEngine) ServiceOption {
	return func(s *service) {
		if engine != nil {
			s.workflow = engine
		}
	}
}

// WithRenderer sets the rich-text renderer used for descriptions.
func WithRenderer(renderer *richtext.Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithLinks sets the resolver used to fill View.URL.
func WithLinks(links interfaces.LinkResolver) ServiceOption {
	return func(s *service) {
		s.links = links
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo     EventRepository
	workflow interfaces.WorkflowEngine
	renderer *richtext.Renderer
	links    interfaces.LinkResolver
	logger   interfaces.Logger
	id       IDGenerator
	now      func() time.Time
}

// NewService constructs an event service instance.
func NewService(repo EventRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:     repo,
		workflow: workflow.New(),
		renderer: richtext.New(),
		logger:   logging.NoOp(),
		id:       uuid.New,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, input EventInput) (*Event, error) {
	record, err := s.build(ctx, input, "", domain.StatusPending)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("events.submitted")
	return created, nil
}

func (s *service) Create(ctx context.Context, input CreateEventInput) (*Event, error) {
	status := input.Status
	if status == "" {
		status = domain.StatusApproved
	}
	if !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	record, err := s.build(ctx, input.EventInput, input.Slug, status)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("events.created")
	return created, nil
}

func (s *service) build(ctx context.Context, input EventInput, requestedSlug string, status domain.Status) (*Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	if input.StartsAt.IsZero() {
		return nil, ErrStartRequired
	}
	endsAt := normalizeTime(input.EndsAt)
	if endsAt != nil && endsAt.Before(input.StartsAt) {
		return nil, ErrEndBeforeStart
	}

	slug, err := s.resolveSlug(ctx, title, requestedSlug)
	if err != nil {
		return nil, err
	}
	position, err := s.nextPosition(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &Event{
		ID:             s.id(),
		Slug:           slug,
		Title:          title,
		Description:    input.Description,
		Location:       strings.TrimSpace(input.Location),
		StartsAt:       input.StartsAt.UTC(),
		EndsAt:         endsAt,
		URL:            strings.TrimSpace(input.URL),
		Organizer:      strings.TrimSpace(input.Organizer),
		SubmitterEmail: strings.TrimSpace(input.SubmitterEmail),
		Status:         status,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

func (s *service) Update(ctx context.Context, input UpdateEventInput) (*Event, error) {
	record, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		record.Title = title
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		record.Description = *input.Description
	}
	if input.Location != nil {
		record.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartsAt != nil {
		if input.StartsAt.IsZero() {
			return nil, ErrStartRequired
		}
		record.StartsAt = input.StartsAt.UTC()
	}
	if input.ClearEndsAt {
		record.EndsAt = nil
	} else if input.EndsAt != nil {
		record.EndsAt = normalizeTime(input.EndsAt)
	}
	if record.EndsAt != nil && record.EndsAt.Before(record.StartsAt) {
		return nil, ErrEndBeforeStart
	}
	if input.URL != nil {
		record.URL = strings.TrimSpace(*input.URL)
	}
	if input.Organizer != nil {
		record.Organizer = strings.TrimSpace(*input.Organizer)
	}
	if input.Slug != nil {
		slug := domain.Slugify(*input.Slug)
		if slug == "" {
			return nil, ErrSlugInvalid
		}
		if slug != record.Slug {
			if taken, err := s.slugTaken(ctx, slug); err != nil {
				return nil, err
			} else if taken {
				return nil, ErrSlugExists
			}
			record.Slug = slug
		}
	}

	record.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(updated).Info("events.updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(record).Info("events.deleted")
	return nil
}

// ListPublic returns approved events that have not finished yet.
func (s *service) ListPublic(ctx context.Context) ([]*Event, error) {
	return s.repo.List(ctx, ListFilter{
		Status:      domain.StatusApproved,
		EndingAfter: s.now().UTC(),
	})
}

func (s *service) ListByStatus(ctx context.Context, status domain.Status) ([]*Event, error) {
	if status != "" && !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	return s.repo.List(ctx, ListFilter{Status: status})
}

func (s *service) Moderate(ctx context.Context, input domain.ModerationInput) (*Event, error) {
	record, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	result, status, err := workflow.Moderate(ctx, s.workflow, domain.KindEvent, record.Status, input)
	if err != nil {
		return nil, err
	}

	reviewedAt := result.CompletedAt.UTC()
	record.Status = status
	record.ReviewNote = strings.TrimSpace(input.Note)
	record.ReviewedBy = strings.TrimSpace(input.ActorID)
	record.ReviewedAt = &reviewedAt
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(updated).Info("events.moderated",
		"transition", result.Transition,
		"from", string(result.FromState),
		"to", string(result.ToState),
		"actor", record.ReviewedBy,
	)
	return updated, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Event, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionApprove, ActorID: actorID, Note: note})
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Event, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionReject, ActorID: actorID, Note: note})
}

// Reorder assigns positions 0..n-1 following ids and stores them in one batch.
func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]*Event, error) {
	if len(ids) == 0 {
		return nil, ErrReorderEmpty
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	now := s.now().UTC()
	records := make([]*Event, 0, len(ids))
	for idx, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, ErrReorderDuplicate
		}
		seen[id] = struct{}{}

		record, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		record.Position = idx
		record.UpdatedAt = now
		records = append(records, record)
	}
	if err := s.repo.UpdatePositions(ctx, records); err != nil {
		return nil, err
	}
	s.logger.Info("events.reordered", "count", len(records))
	return records, nil
}

func (s *service) resolveSlug(ctx context.Context, title, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return domain.UniqueSlug(ctx, title, s.slugTaken)
	}
	slug := domain.Slugify(requested)
	if slug == "" {
		return "", ErrSlugInvalid
	}
	taken, err := s.slugTaken(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrSlugExists
	}
	return slug, nil
}

func (s *service) slugTaken(ctx context.Context, slug string) (bool, error) {
	_, err := s.repo.GetBySlug(ctx, slug)
	if err == nil {
		return true, nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (s *service) nextPosition(ctx context.Context) (int, error) {
	records, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return 0, err
	}
	position := 0
	for _, record := range records {
		if record.Position >= position {
			position = record.Position + 1
		}
	}
	return position, nil
}

func (s *service) log(record *Event) interfaces.Logger {
	if record == nil {
		return s.logger
	}
	return logging.WithRecord(s.logger, string(domain.KindEvent), record.ID.String(), record.Slug)
}

func validStatus(status domain.Status) bool {
	switch status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
		return true
	default:
		return false
	}
}

func normalizeTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
