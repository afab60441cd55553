package service

import (
	"context"
	"sync"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"

	"github.com/rs/zerolog"
)

const (
	auditWriteTimeout = 5 * time.Second
	auditQueueSize    = 256
)

// AuditServiceImpl writes admin actions to the log immediately and persists
// them from a single background writer. When the queue is full, or after
// Close, the entry is only logged.
type AuditServiceImpl struct {
	repo  ports.AuditRepository
	log   zerolog.Logger
	queue chan *domain.AuditLog
	start sync.Once
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAuditService returns an audit trail that logs every entry and, when
// repo is non-nil, stores it too.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditServiceImpl {
	return &AuditServiceImpl{
		repo:  repo,
		log:   log,
		queue: make(chan *domain.AuditLog, auditQueueSize),
		done:  make(chan struct{}),
	}
}

// Log never blocks the request.
func (s *AuditServiceImpl) Log(_ context.Context, entry *domain.AuditLog) {
	ev := s.log.Info().
		Str("action", string(entry.Action)).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID).
		Str("ip", entry.IPAddress)
	if entry.SessionID != nil {
		ev = ev.Str("session_id", *entry.SessionID)
	}
	ev.Msg("audit")

	if s.repo == nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn().Str("action", string(entry.Action)).Msg("audit service closed, entry not persisted")
		return
	}
	s.start.Do(func() { go s.drain() })

	select {
	case s.queue <- entry:
	default:
		s.log.Warn().Str("action", string(entry.Action)).Msg("audit queue full, entry not persisted")
	}
}

// Close stops accepting entries and waits until the queued ones are
// written or ctx ends.
func (s *AuditServiceImpl) Close(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.start.Do(func() { go s.drain() })
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.log.Warn().Int("pending", len(s.queue)).Msg("audit writer did not finish before shutdown")
		return ctx.Err()
	}
}

func (s *AuditServiceImpl) drain() {
	defer close(s.done)
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("failed to persist audit log")
		}
		cancel()
	}
}
