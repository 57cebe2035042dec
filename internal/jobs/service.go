package jobs

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

// Service exposes job board capabilities.
type Service interface {
	Submit(ctx context.Context, input JobInput) (*Job, error)
	Create(ctx context.Context, input CreateJobInput) (*Job, error)
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	GetBySlug(ctx context.Context, slug string) (*Job, error)
	Update(ctx context.Context, input UpdateJobInput) (*Job, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublic(ctx context.Context) ([]*Job, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*Job, error)

	Moderate(ctx context.Context, input domain.ModerationInput) (*Job, error)
	Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Job, error)
	Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Job, error)
	Reorder(ctx context.Context, ids []uuid.UUID) ([]*Job, error)

	Render(job *Job) (*View, error)
	RenderAll(jobs []*Job) ([]*View, error)
}

// JobInput carries the fields an employer submits.
type JobInput struct {
	Title          string
	Company        string
	Location       string
	EmploymentType string
	Description    string
	ApplyURL       string
	Salary         string
	ExpiresAt      *time.Time
	SubmitterEmail string
}

// CreateJobInput is used by admins. Status defaults to approved.
type CreateJobInput struct {
	JobInput
	Slug   string
	Status domain.Status
}

// UpdateJobInput patches a posting. Nil fields are left untouched.
type UpdateJobInput struct {
	ID             uuid.UUID
	Slug           *string
	Title          *string
	Company        *string
	Location       *string
	EmploymentType *string
	Description    *string
	ApplyURL       *string
	Salary         *string
	ExpiresAt      *time.Time
	ClearExpiresAt bool
}

var (
	ErrRepositoryRequired     = errors.New("jobs: repository required")
	ErrIDRequired             = errors.New("jobs: id required")
	ErrTitleRequired          = errors.New("jobs: title required")
	ErrCompanyRequired        = errors.New("jobs: company required")
	ErrDescriptionRequired    = errors.New("jobs: description required")
	ErrEmploymentTypeInvalid  = errors.New("jobs: employment type invalid")
	ErrSlugInvalid            = errors.New("jobs: slug invalid")
	ErrSlugExists             = errors.New("jobs: slug already exists")
	ErrStatusInvalid          = errors.New("jobs: status not valid for jobs")
	ErrReorderEmpty           = errors.New("jobs: reorder requires at least one id")
	ErrReorderDuplicate       = errors.New("jobs: reorder ids must be unique")
	ErrExpiryBeforeSubmission = errors.New("jobs: expiry must be in the future")
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
	repo     JobRepository
	workflow interfaces.WorkflowEngine
	renderer *richtext.Renderer
	links    interfaces.LinkResolver
	logger   interfaces.Logger
	id       IDGenerator
	now      func() time.Time
}

// NewService constructs a job service instance.
func NewService(repo JobRepository, opts ...ServiceOption) Service {
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

func (s *service) Submit(ctx context.Context, input JobInput) (*Job, error) {
	if input.ExpiresAt != nil && !input.ExpiresAt.IsZero() && input.ExpiresAt.Before(s.now()) {
		return nil, ErrExpiryBeforeSubmission
	}
	record, err := s.build(ctx, input, "", domain.StatusPending)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("jobs.submitted")
	return created, nil
}

func (s *service) Create(ctx context.Context, input CreateJobInput) (*Job, error) {
	status := input.Status
	if status == "" {
		status = domain.StatusApproved
	}
	if !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	record, err := s.build(ctx, input.JobInput, input.Slug, status)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("jobs.created")
	return created, nil
}

func (s *service) build(ctx context.Context, input JobInput, requestedSlug string, status domain.Status) (*Job, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	company := strings.TrimSpace(input.Company)
	if company == "" {
		return nil, ErrCompanyRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	employment := strings.ToLower(strings.TrimSpace(input.EmploymentType))
	if !validEmploymentType(employment) {
		return nil, ErrEmploymentTypeInvalid
	}

	slug, err := s.resolveSlug(ctx, title+" "+company, requestedSlug)
	if err != nil {
		return nil, err
	}
	position, err := s.nextPosition(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &Job{
		ID:             s.id(),
		Slug:           slug,
		Title:          title,
		Company:        company,
		Location:       strings.TrimSpace(input.Location),
		EmploymentType: employment,
		Description:    input.Description,
		ApplyURL:       strings.TrimSpace(input.ApplyURL),
		Salary:         strings.TrimSpace(input.Salary),
		SubmitterEmail: strings.TrimSpace(input.SubmitterEmail),
		ExpiresAt:      normalizeTime(input.ExpiresAt),
		Status:         status,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Job, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

func (s *service) Update(ctx context.Context, input UpdateJobInput) (*Job, error) {
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
	if input.Company != nil {
		company := strings.TrimSpace(*input.Company)
		if company == "" {
			return nil, ErrCompanyRequired
		}
		record.Company = company
	}
	if input.Description != nil {
		if strings.TrimSpace(*input.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		record.Description = *input.Description
	}
	if input.EmploymentType != nil {
		employment := strings.ToLower(strings.TrimSpace(*input.EmploymentType))
		if !validEmploymentType(employment) {
			return nil, ErrEmploymentTypeInvalid
		}
		record.EmploymentType = employment
	}
	if input.Location != nil {
		record.Location = strings.TrimSpace(*input.Location)
	}
	if input.ApplyURL != nil {
		record.ApplyURL = strings.TrimSpace(*input.ApplyURL)
	}
	if input.Salary != nil {
		record.Salary = strings.TrimSpace(*input.Salary)
	}
	if input.ClearExpiresAt {
		record.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		record.ExpiresAt = normalizeTime(input.ExpiresAt)
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
	s.log(updated).Info("jobs.updated")
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
	s.log(record).Info("jobs.deleted")
	return nil
}

// ListPublic returns approved postings that have not expired.
func (s *service) ListPublic(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx, ListFilter{
		Status: domain.StatusApproved,
		OpenAt: s.now().UTC(),
	})
}

func (s *service) ListByStatus(ctx context.Context, status domain.Status) ([]*Job, error) {
	if status != "" && !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	return s.repo.List(ctx, ListFilter{Status: status})
}

func (s *service) Moderate(ctx context.Context, input domain.ModerationInput) (*Job, error) {
	record, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	result, status, err := workflow.Moderate(ctx, s.workflow, domain.KindJob, record.Status, input)
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
	s.log(updated).Info("jobs.moderated",
		"transition", result.Transition,
		"from", string(result.FromState),
		"to", string(result.ToState),
		"actor", record.ReviewedBy,
	)
	return updated, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Job, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionApprove, ActorID: actorID, Note: note})
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Job, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionReject, ActorID: actorID, Note: note})
}

// Reorder assigns positions 0..n-1 following ids and stores them in one batch.
func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]*Job, error) {
	if len(ids) == 0 {
		return nil, ErrReorderEmpty
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	now := s.now().UTC()
	records := make([]*Job, 0, len(ids))
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
	s.logger.Info("jobs.reordered", "count", len(records))
	return records, nil
}

func (s *service) resolveSlug(ctx context.Context, base, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return domain.UniqueSlug(ctx, base, s.slugTaken)
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

func (s *service) log(record *Job) interfaces.Logger {
	if record == nil {
		return s.logger
	}
	return logging.WithRecord(s.logger, string(domain.KindJob), record.ID.String(), record.Slug)
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
