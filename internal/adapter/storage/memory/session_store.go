// Package memory holds process-local stores for single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"order-webhook-service/internal/core/domain"
)

// SessionStore implements ports.SessionStore in memory. Expired sessions are
// treated as absent and dropped lazily on read or by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.AdminSession
	now      func() time.Time
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.AdminSession),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session *domain.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.AdminSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep removes every expired session and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
