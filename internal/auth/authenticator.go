package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/interfaces"
)

var (
	ErrVerifierRequired = errors.New("auth: credential verifier required")
	ErrStoreRequired    = errors.New("auth: session store required")
	ErrSessionExpired   = errors.New("auth: session expired")
	ErrTokenRequired    = errors.New("auth: token required")
)

const defaultSessionTTL = 12 * time.Hour

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSessionTTL sets how long a session stays valid after login.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithSubject sets the subject recorded on sessions.
func WithSubject(subject string) Option {
	return func(a *Authenticator) {
		if subject = strings.TrimSpace(subject); subject != "" {
			a.subject = subject
		}
	}
}

// WithTokenGenerator overrides session token generation.
func WithTokenGenerator(generator func() string) Option {
	return func(a *Authenticator) {
		if generator != nil {
			a.token = generator
		}
	}
}

// WithLogger sets the authenticator logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Authenticator gates the admin surface behind a shared secret and
// short-lived sessions.
type Authenticator struct {
	verifier interfaces.CredentialVerifier
	store    interfaces.SessionStore
	ttl      time.Duration
	subject  string
	now      func() time.Time
	token    func() string
	logger   interfaces.Logger
}

// NewAuthenticator wires a verifier and a session store.
func NewAuthenticator(verifier interfaces.CredentialVerifier, store interfaces.SessionStore, opts ...Option) (*Authenticator, error) {
	if verifier == nil {
		return nil, ErrVerifierRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	a := &Authenticator{
		verifier: verifier,
		store:    store,
		ttl:      defaultSessionTTL,
		subject:  "admin",
		now:      time.Now,
		token:    uuid.NewString,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login verifies secret and opens a new session.
func (a *Authenticator) Login(ctx context.Context, secret string) (interfaces.Session, error) {
	if err := a.verifier.Verify(ctx, secret); err != nil {
		a.logger.Warn("auth.login.failed")
		return interfaces.Session{}, err
	}
	now := a.now().UTC()
	session := interfaces.Session{
		Token:     a.token(),
		Subject:   a.subject,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}
	if err := a.store.Save(ctx, session); err != nil {
		return interfaces.Session{}, err
	}
	a.logger.Info("auth.login.succeeded", "subject", session.Subject, "expires_at", session.ExpiresAt)
	return session, nil
}

// Validate returns the live session for token. Expired sessions are removed
// from the store and reported as ErrSessionExpired.
func (a *Authenticator) Validate(ctx context.Context, token string) (interfaces.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return interfaces.Session{}, ErrTokenRequired
	}
	session, err := a.store.Get(ctx, token)
	if err != nil {
		return interfaces.Session{}, err
	}
	if session.Expired(a.now()) {
		if err := a.store.Delete(ctx, token); err != nil {
			return interfaces.Session{}, err
		}
		a.logger.Info("auth.session.expired", "subject", session.Subject)
		return interfaces.Session{}, ErrSessionExpired
	}
	return session, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenRequired
	}
	return a.store.Delete(ctx, token)
}
