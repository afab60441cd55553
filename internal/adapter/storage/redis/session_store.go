package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-webhook-service/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// SessionStore implements ports.SessionStore in Redis. Each session is a
// JSON value whose key expires with the session.
type SessionStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewSessionStore creates a new Redis-backed admin session store.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "admin:session:",
		now:    time.Now,
	}
}

// Save stores session until its expiry.
func (s *SessionStore) Save(ctx context.Context, session *domain.AdminSession) error {
	ttl := session.TTL(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.AdminSession, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis session get: %w", err)
	}

	var session domain.AdminSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete revokes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis session del: %w", err)
	}
	return nil
}
