package articles

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/markdown"
	"github.com/nycb2b/site/internal/workflow"
	"github.com/nycb2b/site/pkg/interfaces"
)

// Service exposes blog capabilities.
type Service interface {
	Submit(ctx context.Context, input ArticleInput) (*Article, error)
	Create(ctx context.Context, input CreateArticleInput) (*Article, error)
	Get(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	Update(ctx context.Context, input UpdateArticleInput) (*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListPublished(ctx context.Context) ([]*Article, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]*Article, error)

	Moderate(ctx context.Context, input domain.ModerationInput) (*Article, error)
	Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Article, error)
	Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Article, error)
	Publish(ctx context.Context, id uuid.UUID, actorID string) (*Article, error)
	Unpublish(ctx context.Context, id uuid.UUID, actorID string) (*Article, error)
	Reorder(ctx context.Context, ids []uuid.UUID) ([]*Article, error)

	Import(ctx context.Context, doc *interfaces.Document) (*Article, error)

	Render(article *Article) (*View, error)
	RenderAll(articles []*Article) ([]*View, error)
}

// ArticleInput carries the fields a guest author submits.
type ArticleInput struct {
	Title          string
	Summary        string
	Body           string
	Format         domain.Format
	Author         string
	Tags           []string
	SubmitterEmail string
}

// CreateArticleInput is used by admins. Status defaults to draft; creating
// directly as published stamps PublishedAt.
type CreateArticleInput struct {
	ArticleInput
	Slug   string
	Status domain.Status
}

// UpdateArticleInput patches an article. Nil fields are left untouched.
type UpdateArticleInput struct {
	ID      uuid.UUID
	Slug    *string
	Title   *string
	Summary *string
	Body    *string
	Format  *domain.Format
	Author  *string
	Tags    *[]string
}

var (
	ErrRepositoryRequired = errors.New("articles: repository required")
	ErrIDRequired         = errors.New("articles: id required")
	ErrTitleRequired      = errors.New("articles: title required")
	ErrBodyRequired       = errors.New("articles: body required")
	ErrFormatInvalid      = errors.New("articles: format invalid")
	ErrFormatDisabled     = errors.New("articles: markdown format disabled")
	ErrSlugInvalid        = errors.New("articles: slug invalid")
	ErrSlugExists         = errors.New("articles: slug already exists")
	ErrStatusInvalid      = errors.New("articles: status not valid for articles")
	ErrReorderEmpty       = errors.New("articles: reorder requires at least one id")
	ErrReorderDuplicate   = errors.New("articles: reorder ids must be unique")
	ErrDocumentRequired   = errors.New("articles: import document required")
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

// WithBodyRenderer sets the renderer used for article bodies.
func WithBodyRenderer(renderer *markdown.BodyRenderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.bodies = renderer
		}
	}
}

// WithMarkdownAllowed toggles acceptance of the markdown format on writes.
func WithMarkdownAllowed(allowed bool) ServiceOption {
	return func(s *service) {
		s.markdownAllowed = allowed
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
	repo            ArticleRepository
	workflow        interfaces.WorkflowEngine
	bodies          *markdown.BodyRenderer
	markdownAllowed bool
	links           interfaces.LinkResolver
	logger          interfaces.Logger
	id              IDGenerator
	now             func() time.Time
}

// NewService constructs an article service instance.
func NewService(repo ArticleRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{
		repo:            repo,
		workflow:        workflow.New(),
		bodies:          markdown.NewBodyRenderer(nil, markdown.NewGoldmarkParser(interfaces.ParseOptions{SafeMode: true})),
		markdownAllowed: true,
		logger:          logging.NoOp(),
		id:              uuid.New,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, input ArticleInput) (*Article, error) {
	record, err := s.build(ctx, input, "", domain.StatusPending)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("articles.submitted")
	return created, nil
}

func (s *service) Create(ctx context.Context, input CreateArticleInput) (*Article, error) {
	status := input.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	record, err := s.build(ctx, input.ArticleInput, input.Slug, status)
	if err != nil {
		return nil, err
	}
	if status == domain.StatusPublished {
		publishedAt := record.CreatedAt
		record.PublishedAt = &publishedAt
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(created).Info("articles.created")
	return created, nil
}

func (s *service) build(ctx context.Context, input ArticleInput, requestedSlug string, status domain.Status) (*Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, ErrBodyRequired
	}
	format, err := s.checkFormat(input.Format)
	if err != nil {
		return nil, err
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
	return &Article{
		ID:             s.id(),
		Slug:           slug,
		Title:          title,
		Summary:        strings.TrimSpace(input.Summary),
		Body:           input.Body,
		Format:         format,
		Author:         strings.TrimSpace(input.Author),
		Tags:           normalizeTags(input.Tags),
		SubmitterEmail: strings.TrimSpace(input.SubmitterEmail),
		Status:         status,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	return s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
}

func (s *service) Update(ctx context.Context, input UpdateArticleInput) (*Article, error) {
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
	if input.Body != nil {
		if strings.TrimSpace(*input.Body) == "" {
			return nil, ErrBodyRequired
		}
		record.Body = *input.Body
	}
	if input.Format != nil {
		format, err := s.checkFormat(*input.Format)
		if err != nil {
			return nil, err
		}
		record.Format = format
	}
	if input.Summary != nil {
		record.Summary = strings.TrimSpace(*input.Summary)
	}
	if input.Author != nil {
		record.Author = strings.TrimSpace(*input.Author)
	}
	if input.Tags != nil {
		record.Tags = normalizeTags(*input.Tags)
	}
	if input.Slug != nil {
		if err := s.changeSlug(ctx, record, *input.Slug); err != nil {
			return nil, err
		}
	}

	record.UpdatedAt = s.now().UTC()
	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(updated).Info("articles.updated")
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
	s.log(record).Info("articles.deleted")
	return nil
}

func (s *service) ListPublished(ctx context.Context) ([]*Article, error) {
	return s.repo.List(ctx, ListFilter{Status: domain.StatusPublished})
}

func (s *service) ListByStatus(ctx context.Context, status domain.Status) ([]*Article, error) {
	if status != "" && !validStatus(status) {
		return nil, ErrStatusInvalid
	}
	return s.repo.List(ctx, ListFilter{Status: status})
}

func (s *service) Moderate(ctx context.Context, input domain.ModerationInput) (*Article, error) {
	record, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	result, status, err := workflow.Moderate(ctx, s.workflow, domain.KindArticle, record.Status, input)
	if err != nil {
		return nil, err
	}

	completedAt := result.CompletedAt.UTC()
	record.Status = status
	record.ReviewNote = strings.TrimSpace(input.Note)
	record.ReviewedBy = strings.TrimSpace(input.ActorID)
	record.ReviewedAt = &completedAt
	switch {
	case status == domain.StatusPublished && record.PublishedAt == nil:
		record.PublishedAt = &completedAt
	case status != domain.StatusPublished:
		record.PublishedAt = nil
	}
	record.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.log(updated).Info("articles.moderated",
		"transition", result.Transition,
		"from", string(result.FromState),
		"to", string(result.ToState),
		"actor", record.ReviewedBy,
	)
	return updated, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID, actorID, note string) (*Article, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionApprove, ActorID: actorID, Note: note})
}

func (s *service) Reject(ctx context.Context, id uuid.UUID, actorID, note string) (*Article, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionReject, ActorID: actorID, Note: note})
}

func (s *service) Publish(ctx context.Context, id uuid.UUID, actorID string) (*Article, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionPublish, ActorID: actorID})
}

func (s *service) Unpublish(ctx context.Context, id uuid.UUID, actorID string) (*Article, error) {
	return s.Moderate(ctx, domain.ModerationInput{ID: id, Action: workflow.TransitionUnpublish, ActorID: actorID})
}

// Reorder assigns positions 0..n-1 following ids and stores them in one batch.
func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) ([]*Article, error) {
	if len(ids) == 0 {
		return nil, ErrReorderEmpty
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	now := s.now().UTC()
	records := make([]*Article, 0, len(ids))
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
	s.logger.Info("articles.reordered", "count", len(records))
	return records, nil
}

// Import creates or refreshes an article from a markdown document. The slug
// from the front matter (or the title) identifies the article, so importing
// the same file twice updates it in place. Documents with draft set to false
// are published.
func (s *service) Import(ctx context.Context, doc *interfaces.Document) (*Article, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	meta := doc.FrontMatter
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(doc.FilePath), filepath.Ext(doc.FilePath))
	}
	format := domain.FormatMarkdown
	if strings.TrimSpace(meta.Format) != "" {
		parsed, err := domain.ParseFormat(meta.Format)
		if err != nil {
			return nil, ErrFormatInvalid
		}
		format = parsed
	}
	slugSource := meta.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = title
	}
	slug := domain.Slugify(slugSource)
	if slug == "" {
		return nil, ErrSlugInvalid
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	var notFound *NotFoundError
	switch {
	case err == nil:
	case errors.As(err, &notFound):
		existing = nil
	default:
		return nil, err
	}

	var record *Article
	if existing == nil {
		record, err = s.build(ctx, ArticleInput{
			Title:   title,
			Summary: meta.Summary,
			Body:    string(doc.Body),
			Format:  format,
			Author:  meta.Author,
			Tags:    meta.Tags,
		}, slug, domain.StatusDraft)
		if err != nil {
			return nil, err
		}
	} else {
		record = existing
		if strings.TrimSpace(string(doc.Body)) == "" {
			return nil, ErrBodyRequired
		}
		checked, err := s.checkFormat(format)
		if err != nil {
			return nil, err
		}
		record.Title = title
		record.Summary = strings.TrimSpace(meta.Summary)
		record.Body = string(doc.Body)
		record.Format = checked
		record.Author = strings.TrimSpace(meta.Author)
		record.Tags = normalizeTags(meta.Tags)
		record.UpdatedAt = s.now().UTC()
	}
	record.SourcePath = doc.FilePath

	now := s.now().UTC()
	if meta.Draft {
		record.Status = domain.StatusDraft
		record.PublishedAt = nil
	} else {
		record.Status = domain.StatusPublished
		publishedAt := now
		switch {
		case !meta.Date.IsZero():
			publishedAt = meta.Date.UTC()
		case record.PublishedAt != nil:
			publishedAt = *record.PublishedAt
		}
		record.PublishedAt = &publishedAt
	}

	var saved *Article
	if existing == nil {
		saved, err = s.repo.Create(ctx, record)
	} else {
		saved, err = s.repo.Update(ctx, record)
	}
	if err != nil {
		return nil, err
	}
	s.log(saved).Info("articles.imported", "path", doc.FilePath, "status", string(saved.Status))
	return saved, nil
}

func (s *service) checkFormat(format domain.Format) (domain.Format, error) {
	parsed, err := domain.ParseFormat(string(format))
	if err != nil {
		return "", ErrFormatInvalid
	}
	if parsed == domain.FormatMarkdown && !s.markdownAllowed {
		return "", ErrFormatDisabled
	}
	return parsed, nil
}

func (s *service) changeSlug(ctx context.Context, record *Article, requested string) error {
	slug := domain.Slugify(requested)
	if slug == "" {
		return ErrSlugInvalid
	}
	if slug == record.Slug {
		return nil
	}
	taken, err := s.slugTaken(ctx, slug)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlugExists
	}
	record.Slug = slug
	return nil
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

func (s *service) log(record *Article) interfaces.Logger {
	if record == nil {
		return s.logger
	}
	return logging.WithRecord(s.logger, string(domain.KindArticle), record.ID.String(), record.Slug)
}

func validStatus(status domain.Status) bool {
	switch status {
	case domain.StatusDraft, domain.StatusPending, domain.StatusPublished, domain.StatusRejected:
		return true
	default:
		return false
	}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag))
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
