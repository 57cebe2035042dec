package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/articles"
	"github.com/nycb2b/site/internal/auth"
	"github.com/nycb2b/site/internal/commands"
	moderationcmd "github.com/nycb2b/site/internal/commands/moderation"
	"github.com/nycb2b/site/internal/events"
	"github.com/nycb2b/site/internal/jobs"
	sitevalidation "github.com/nycb2b/site/internal/validation"
	"github.com/nycb2b/site/internal/workflow"
)

var errRecordNotPublic = errors.New("http: record not public")

type errorResponse struct {
	Error   string                           `json:"error"`
	Code    string                           `json:"code,omitempty"`
	Message string                           `json:"message,omitempty"`
	Issues  []sitevalidation.ValidationIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func readBody(r *http.Request) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, io.EOF
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
}

func serviceUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}

func mapError(err error) (int, errorResponse) {
	status, payload := classifyError(err)
	payload.Code = commands.ErrorCode(err)
	return status, payload
}

func classifyError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, errorResponse{
			Error:   "payload_too_large",
			Message: err.Error(),
		}
	}

	var (
		eventNotFound   *events.NotFoundError
		jobNotFound     *jobs.NotFoundError
		articleNotFound *articles.NotFoundError
	)
	if errors.As(err, &eventNotFound) || errors.As(err, &jobNotFound) || errors.As(err, &articleNotFound) ||
		errors.Is(err, errRecordNotPublic) || errors.Is(err, moderationcmd.ErrKindUnavailable) ||
		goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
		}
	}

	if errors.Is(err, auth.ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrSessionNotFound) ||
		errors.Is(err, auth.ErrSessionExpired) ||
		errors.Is(err, auth.ErrTokenRequired) {
		return http.StatusUnauthorized, errorResponse{
			Error:   "unauthorized",
			Message: err.Error(),
		}
	}

	if errors.Is(err, workflow.ErrInvalidTransition) ||
		errors.Is(err, events.ErrSlugExists) ||
		errors.Is(err, jobs.ErrSlugExists) ||
		errors.Is(err, articles.ErrSlugExists) ||
		goerrors.IsCategory(err, goerrors.CategoryConflict) {
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: err.Error(),
		}
	}

	if errors.Is(err, sitevalidation.ErrSchemaValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  sitevalidation.Issues(err),
		}
	}

	var fieldErrors validation.Errors
	if errors.As(err, &fieldErrors) || goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  fieldIssues(fieldErrors),
		}
	}

	if isInputError(err) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

var inputErrors = []error{
	events.ErrTitleRequired, events.ErrDescriptionRequired, events.ErrStartRequired,
	events.ErrEndBeforeStart, events.ErrSlugInvalid, events.ErrStatusInvalid,
	events.ErrReorderEmpty, events.ErrReorderDuplicate, events.ErrIDRequired,
	jobs.ErrTitleRequired, jobs.ErrCompanyRequired, jobs.ErrDescriptionRequired,
	jobs.ErrEmploymentTypeInvalid, jobs.ErrSlugInvalid, jobs.ErrStatusInvalid,
	jobs.ErrReorderEmpty, jobs.ErrReorderDuplicate, jobs.ErrExpiryBeforeSubmission, jobs.ErrIDRequired,
	articles.ErrTitleRequired, articles.ErrBodyRequired, articles.ErrFormatInvalid,
	articles.ErrFormatDisabled, articles.ErrSlugInvalid, articles.ErrStatusInvalid,
	articles.ErrReorderEmpty, articles.ErrReorderDuplicate, articles.ErrDocumentRequired, articles.ErrIDRequired,
}

func isInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func fieldIssues(errs validation.Errors) []sitevalidation.ValidationIssue {
	if len(errs) == 0 {
		return nil
	}
	issues := make([]sitevalidation.ValidationIssue, 0, len(errs))
	for field, err := range errs {
		issues = append(issues, sitevalidation.ValidationIssue{Location: "/" + field, Message: err.Error()})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Location < issues[j].Location })
	return issues
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}
