package interfaces

import (
	"context"
	"time"
)

// CredentialVerifier checks an admin secret. Implementations must not keep
// per-request state.
type CredentialVerifier interface {
	Verify(ctx context.Context, secret string) error
}

// Session is an authenticated admin session.
type Session struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore persists admin sessions.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
