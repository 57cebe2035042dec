package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/articles"
	moderationcmd "github.com/nycb2b/site/internal/commands/moderation"
	"github.com/nycb2b/site/internal/domain"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	"github.com/nycb2b/site/internal/markdown"
)

func (api *AdminAPI) pathKind(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	kind, err := domain.ParseKind(r.PathValue("kind"))
	if err != nil {
		notFound(w)
		return "", false
	}
	if !api.kindAvailable(kind) {
		serviceUnavailable(w)
		return "", false
	}
	return kind, true
}

func (api *AdminAPI) kindAvailable(kind domain.Kind) bool {
	switch kind {
	case domain.KindEvent:
		return api.services.Events != nil
	case domain.KindJob:
		return api.services.Jobs != nil
	case domain.KindArticle:
		return api.services.Articles != nil
	}
	return false
}

func (api *AdminAPI) render(ctx context.Context, kind domain.Kind, id uuid.UUID) (any, error) {
	switch kind {
	case domain.KindEvent:
		record, err := api.services.Events.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return api.services.Events.Render(record)
	case domain.KindJob:
		record, err := api.services.Jobs.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return api.services.Jobs.Render(record)
	default:
		record, err := api.services.Articles.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return api.services.Articles.Render(record)
	}
}

func (api *AdminAPI) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.pathKind(w, r)
	if !ok {
		return
	}
	status := domain.StatusPending
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		status = parsed
	}

	ctx := r.Context()
	var (
		views any
		err   error
	)
	switch kind {
	case domain.KindEvent:
		var records []*events.Event
		if records, err = api.services.Events.ListByStatus(ctx, status); err == nil {
			views, err = api.services.Events.RenderAll(records)
		}
	case domain.KindJob:
		var records []*jobs.Job
		if records, err = api.services.Jobs.ListByStatus(ctx, status); err == nil {
			views, err = api.services.Jobs.RenderAll(records)
		}
	case domain.KindArticle:
		var records []*articles.Article
		if records, err = api.services.Articles.ListByStatus(ctx, status); err == nil {
			views, err = api.services.Articles.RenderAll(records)
		}
	}
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (api *AdminAPI) handleModerate(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.pathKind(w, r)
	if !ok {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var payload moderationPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid json body")
		return
	}

	err = api.moderate.Execute(r.Context(), moderationcmd.ModerateCommand{
		Kind:    string(kind),
		ID:      id.String(),
		Action:  strings.ToLower(strings.TrimSpace(r.PathValue("action"))),
		ActorID: actor(r),
		Note:    payload.Note,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	view, err := api.render(r.Context(), kind, id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (api *AdminAPI) handleReorder(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.pathKind(w, r)
	if !ok {
		return
	}
	var payload reorderPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if err := api.reorder.Execute(r.Context(), moderationcmd.ReorderCommand{Kind: string(kind), IDs: payload.IDs}); err != nil {
		api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.pathKind(w, r)
	if !ok {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}

	ctx := r.Context()
	switch kind {
	case domain.KindEvent:
		var payload eventUpdatePayload
		if err := decodeJSON(r, &payload); err != nil {
			badRequest(w, "invalid json body")
			return
		}
		_, err = api.services.Events.Update(ctx, events.UpdateEventInput{
			ID:          id,
			Slug:        payload.Slug,
			Title:       payload.Title,
			Description: payload.Description,
			Location:    payload.Location,
			StartsAt:    payload.StartsAt,
			EndsAt:      payload.EndsAt,
			ClearEndsAt: payload.ClearEndsAt,
			URL:         payload.URL,
			Organizer:   payload.Organizer,
		})
	case domain.KindJob:
		var payload jobUpdatePayload
		if err := decodeJSON(r, &payload); err != nil {
			badRequest(w, "invalid json body")
			return
		}
		_, err = api.services.Jobs.Update(ctx, jobs.UpdateJobInput{
			ID:             id,
			Slug:           payload.Slug,
			Title:          payload.Title,
			Company:        payload.Company,
			Location:       payload.Location,
			EmploymentType: payload.EmploymentType,
			Description:    payload.Description,
			ApplyURL:       payload.ApplyURL,
			Salary:         payload.Salary,
			ExpiresAt:      payload.ExpiresAt,
			ClearExpiresAt: payload.ClearExpiresAt,
		})
	case domain.KindArticle:
		var payload articleUpdatePayload
		if err := decodeJSON(r, &payload); err != nil {
			badRequest(w, "invalid json body")
			return
		}
		_, err = api.services.Articles.Update(ctx, articles.UpdateArticleInput{
			ID:      id,
			Slug:    payload.Slug,
			Title:   payload.Title,
			Summary: payload.Summary,
			Body:    payload.Body,
			Format:  payload.Format,
			Author:  payload.Author,
			Tags:    payload.Tags,
		})
	}
	if err != nil {
		api.fail(w, r, err)
		return
	}
	view, err := api.render(ctx, kind, id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (api *AdminAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.pathKind(w, r)
	if !ok {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	ctx := r.Context()
	switch kind {
	case domain.KindEvent:
		err = api.services.Events.Delete(ctx, id)
	case domain.KindJob:
		err = api.services.Jobs.Delete(ctx, id)
	case domain.KindArticle:
		err = api.services.Articles.Delete(ctx, id)
	}
	if err != nil {
		api.fail(w, r, err)
		return
	}
	api.logger.WithContext(ctx).Info("http.admin.deleted", "kind", string(kind), "id", id.String(), "actor", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleArticleCreate(w http.ResponseWriter, r *http.Request) {
	if api.services.Articles == nil {
		serviceUnavailable(w)
		return
	}
	var payload articleCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	record, err := api.services.Articles.Create(r.Context(), articles.CreateArticleInput{
		ArticleInput: payload.input(),
		Slug:         payload.Slug,
		Status:       payload.Status,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	view, err := api.services.Articles.Render(record)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (api *AdminAPI) handleArticleImport(w http.ResponseWriter, r *http.Request) {
	if api.services.Articles == nil {
		serviceUnavailable(w)
		return
	}
	var payload articleImportPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	if strings.TrimSpace(payload.Content) == "" {
		badRequest(w, "content is required")
		return
	}
	filename := strings.TrimSpace(payload.Filename)
	if filename == "" {
		filename = "upload.md"
	}
	doc, err := markdown.BuildDocument(filename, []byte(payload.Content))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	record, err := api.services.Articles.Import(r.Context(), doc)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	view, err := api.services.Articles.Render(record)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
