package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/nycb2b/site/internal/audit"
	"github.com/nycb2b/site/internal/auth"
	moderationcmd "github.com/nycb2b/site/internal/commands/moderation"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/interfaces"
)

// SessionCookieName is the cookie carrying the admin session token.
const SessionCookieName = "site_session"

type sessionContextKey struct{}

func sessionFromContext(ctx context.Context) (interfaces.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(interfaces.Session)
	return session, ok
}

// AdminAPI registers the password-gated moderation endpoints.
type AdminAPI struct {
	basePath      string
	services      Services
	authenticator *auth.Authenticator
	moderate      command.Commander[moderationcmd.ModerateCommand]
	reorder       command.Commander[moderationcmd.ReorderCommand]
	audit         audit.Recorder
	secureCookies bool
	logger        interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(services Services, authenticator *auth.Authenticator, opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath:      "/admin/api",
		services:      services,
		authenticator: authenticator,
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	commandServices := moderationcmd.Services{
		Events:   services.Events,
		Jobs:     services.Jobs,
		Articles: services.Articles,
		Audit:    api.audit,
	}
	if api.moderate == nil {
		api.moderate = moderationcmd.NewModerateHandler(commandServices, api.logger)
	}
	if api.reorder == nil {
		api.reorder = moderationcmd.NewReorderHandler(commandServices, api.logger)
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithModerateHandler replaces the command used for moderation actions.
func WithModerateHandler(handler command.Commander[moderationcmd.ModerateCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.moderate = handler
	}
}

// WithReorderHandler replaces the command used for reordering.
func WithReorderHandler(handler command.Commander[moderationcmd.ReorderCommand]) AdminOption {
	return func(api *AdminAPI) {
		api.reorder = handler
	}
}

// WithAuditRecorder exposes the moderation trail at GET {base}/audit. The
// default moderation handler records into it as well.
func WithAuditRecorder(recorder audit.Recorder) AdminOption {
	return func(api *AdminAPI) {
		api.audit = recorder
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) AdminOption {
	return func(api *AdminAPI) {
		api.secureCookies = secure
	}
}

// WithAdminLogger sets the admin API logger.
func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}
	if api.authenticator == nil {
		return fmt.Errorf("http: admin api requires an authenticator")
	}

	base := joinPath(api.basePath, "")
	mux.HandleFunc("POST "+joinPath(base, "login"), api.handleLogin)
	mux.HandleFunc("POST "+joinPath(base, "logout"), api.handleLogout)

	if api.audit != nil {
		mux.HandleFunc("GET "+joinPath(base, "audit"), api.requireSession(api.handleAudit))
	}
	mux.HandleFunc("GET "+joinPath(base, "{kind}"), api.requireSession(api.handleList))
	mux.HandleFunc("POST "+joinPath(base, "{kind}/reorder"), api.requireSession(api.handleReorder))
	mux.HandleFunc("POST "+joinPath(base, "{kind}/{id}/{action}"), api.requireSession(api.handleModerate))
	mux.HandleFunc("PUT "+joinPath(base, "{kind}/{id}"), api.requireSession(api.handleUpdate))
	mux.HandleFunc("DELETE "+joinPath(base, "{kind}/{id}"), api.requireSession(api.handleDelete))
	mux.HandleFunc("POST "+joinPath(base, "articles"), api.requireSession(api.handleArticleCreate))
	mux.HandleFunc("POST "+joinPath(base, "articles/import"), api.requireSession(api.handleArticleImport))
	return nil
}

func (api *AdminAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.admin.failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, payload)
}

func sessionToken(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (api *AdminAPI) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := api.authenticator.Validate(r.Context(), sessionToken(r))
		if err != nil {
			api.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		ctx = logging.ContextWithActor(ctx, session.Subject)
		next(w, r.WithContext(ctx))
	}
}

func (api *AdminAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	session, err := api.authenticator.Login(r.Context(), payload.Password)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     joinPath(api.basePath, ""),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   api.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		Subject:   session.Subject,
		ExpiresAt: session.ExpiresAt,
	})
}

func (api *AdminAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := api.authenticator.Logout(r.Context(), sessionToken(r)); err != nil {
		api.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     joinPath(api.basePath, ""),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   api.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func actor(r *http.Request) string {
	if session, ok := sessionFromContext(r.Context()); ok {
		return session.Subject
	}
	return ""
}

// handleAudit lists recorded moderation decisions, newest first.
func (api *AdminAPI) handleAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := api.audit.List(r.Context())
	if err != nil {
		api.fail(w, r, err)
		return
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	writeJSON(w, http.StatusOK, entries)
}
