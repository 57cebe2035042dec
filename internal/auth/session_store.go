package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nycb2b/site/pkg/interfaces"
)

// ErrSessionNotFound is returned for unknown tokens.
var ErrSessionNotFound = errors.New("auth: session not found")

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]interfaces.Session
}

// NewMemorySessionStore constructs an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]interfaces.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, session interfaces.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (interfaces.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return interfaces.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// DeleteExpired drops every session expired at now and reports how many
// were removed.
func (s *MemorySessionStore) DeleteExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
