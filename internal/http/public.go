package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/internal/richtext"
	"github.com/nycb2b/site/internal/validation"
	"github.com/nycb2b/site/pkg/interfaces"
)

// Services groups the content services exposed over HTTP. Nil members
// answer 503.
type Services struct {
	Events   events.Service
	Jobs     jobs.Service
	Articles articles.Service
}

// PublicAPI serves listings, detail pages, submissions and the render preview.
type PublicAPI struct {
	basePath    string
	services    Services
	validator   *validation.Validator
	preview     *richtext.Renderer
	submissions bool
	previewOn   bool
	now         func() time.Time
	logger      interfaces.Logger
}

// PublicOption mutates the PublicAPI configuration.
type PublicOption func(*PublicAPI)

// NewPublicAPI constructs a PublicAPI with submissions and preview enabled.
func NewPublicAPI(services Services, opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{
		basePath:    "/api",
		services:    services,
		validator:   validation.NewValidator(),
		preview:     richtext.New(richtext.WithEscapePolicy(richtext.EscapeHTML)),
		submissions: true,
		previewOn:   true,
		now:         time.Now,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithPublicBasePath overrides the base path (defaults to "/api").
func WithPublicBasePath(path string) PublicOption {
	return func(api *PublicAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithSubmissions toggles the public POST endpoints.
func WithSubmissions(enabled bool) PublicOption {
	return func(api *PublicAPI) {
		api.submissions = enabled
	}
}

// WithPreview toggles POST /render.
func WithPreview(enabled bool) PublicOption {
	return func(api *PublicAPI) {
		api.previewOn = enabled
	}
}

// WithValidator replaces the submission schema validator.
func WithValidator(validator *validation.Validator) PublicOption {
	return func(api *PublicAPI) {
		if validator != nil {
			api.validator = validator
		}
	}
}

// WithPublicClock overrides the time source used to hide expired postings.
func WithPublicClock(now func() time.Time) PublicOption {
	return func(api *PublicAPI) {
		if now != nil {
			api.now = now
		}
	}
}

// WithPublicLogger sets the logger used for server-side failures.
func WithPublicLogger(logger interfaces.Logger) PublicOption {
	return func(api *PublicAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the public endpoints to mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: public api is nil")
	}
	base := joinPath(api.basePath, "")

	for _, kind := range []domain.Kind{domain.KindEvent, domain.KindJob, domain.KindArticle} {
		root := joinPath(base, kind.Plural())
		kind := kind
		mux.HandleFunc("GET "+root, func(w http.ResponseWriter, r *http.Request) {
			api.handleList(w, r, kind)
		})
		mux.HandleFunc("GET "+root+"/{slug}", func(w http.ResponseWriter, r *http.Request) {
			api.handleDetail(w, r, kind)
		})
		if api.submissions {
			mux.HandleFunc("POST "+root, func(w http.ResponseWriter, r *http.Request) {
				api.handleSubmit(w, r, kind)
			})
		}
	}
	if api.previewOn {
		mux.HandleFunc("POST "+joinPath(base, "render"), api.handlePreview)
	}
	return nil
}

func (api *PublicAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.public.failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

func (api *PublicAPI) handleList(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	ctx := r.Context()
	var (
		views any
		err   error
	)
	switch kind {
	case domain.KindEvent:
		if api.services.Events == nil {
			serviceUnavailable(w)
			return
		}
		var records []*events.Event
		if records, err = api.services.Events.ListPublic(ctx); err == nil {
			views, err = api.services.Events.RenderAll(records)
		}
	case domain.KindJob:
		if api.services.Jobs == nil {
			serviceUnavailable(w)
			return
		}
		var records []*jobs.Job
		if records, err = api.services.Jobs.ListPublic(ctx); err == nil {
			views, err = api.services.Jobs.RenderAll(records)
		}
	case domain.KindArticle:
		if api.services.Articles == nil {
			serviceUnavailable(w)
			return
		}
		var records []*articles.Article
		if records, err = api.services.Articles.ListPublished(ctx); err == nil {
			views, err = api.services.Articles.RenderAll(records)
		}
	}
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (api *PublicAPI) handleDetail(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	ctx := r.Context()
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		notFound(w)
		return
	}
	var (
		view any
		err  error
	)
	switch kind {
	case domain.KindEvent:
		if api.services.Events == nil {
			serviceUnavailable(w)
			return
		}
		var record *events.Event
		if record, err = api.services.Events.GetBySlug(ctx, slug); err == nil {
			if record.Status != domain.StatusApproved {
				err = errRecordNotPublic
			} else {
				view, err = api.services.Events.Render(record)
			}
		}
	case domain.KindJob:
		if api.services.Jobs == nil {
			serviceUnavailable(w)
			return
		}
		var record *jobs.Job
		if record, err = api.services.Jobs.GetBySlug(ctx, slug); err == nil {
			if record.Status != domain.StatusApproved || record.Expired(api.now()) {
				err = errRecordNotPublic
			} else {
				view, err = api.services.Jobs.Render(record)
			}
		}
	case domain.KindArticle:
		if api.services.Articles == nil {
			serviceUnavailable(w)
			return
		}
		var record *articles.Article
		if record, err = api.services.Articles.GetBySlug(ctx, slug); err == nil {
			if record.Status != domain.StatusPublished {
				err = errRecordNotPublic
			} else {
				view, err = api.services.Articles.Render(record)
			}
		}
	}
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (api *PublicAPI) handleSubmit(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	ctx := r.Context()
	body, err := readBody(r)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if err := api.validator.Validate(kind, raw); err != nil {
		api.fail(w, r, err)
		return
	}

	var receipt submissionReceipt
	switch kind {
	case domain.KindEvent:
		if api.services.Events == nil {
			serviceUnavailable(w)
			return
		}
		var payload eventPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			badRequest(w, err.Error())
			return
		}
		record, err := api.services.Events.Submit(ctx, payload.input())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		receipt = submissionReceipt{ID: record.ID.String(), Slug: record.Slug, Status: record.Status}
	case domain.KindJob:
		if api.services.Jobs == nil {
			serviceUnavailable(w)
			return
		}
		var payload jobPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			badRequest(w, err.Error())
			return
		}
		record, err := api.services.Jobs.Submit(ctx, payload.input())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		receipt = submissionReceipt{ID: record.ID.String(), Slug: record.Slug, Status: record.Status}
	case domain.KindArticle:
		if api.services.Articles == nil {
			serviceUnavailable(w)
			return
		}
		var payload articlePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			badRequest(w, err.Error())
			return
		}
		record, err := api.services.Articles.Submit(ctx, payload.input())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		receipt = submissionReceipt{ID: record.ID.String(), Slug: record.Slug, Status: record.Status}
	}
	writeJSON(w, http.StatusAccepted, receipt)
}

func (api *PublicAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	var payload previewPayload
	if err := decodeJSON(r, &payload); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			api.fail(w, r, err)
			return
		}
		badRequest(w, "invalid json body")
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: api.preview.Render(payload.Content)})
}
