package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/pkg/apperror"

	"github.com/google/uuid"
)

// AdminAuthServiceImpl implements ports.AdminAuthService. One operator
// credential is configured as an Argon2id hash; sessions live in the
// injected SessionStore so their lifetime is independent of the process.
type AdminAuthServiceImpl struct {
	passwordHash string
	sessionTTL   time.Duration
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	sessions     ports.SessionStore
	now          func() time.Time
}

// NewAdminAuthService creates a new AdminAuthServiceImpl.
func NewAdminAuthService(
	passwordHash string,
	sessionTTL time.Duration,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	sessions ports.SessionStore,
) *AdminAuthServiceImpl {
	return &AdminAuthServiceImpl{
		passwordHash: passwordHash,
		sessionTTL:   sessionTTL,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		sessions:     sessions,
		now:          time.Now,
	}
}

// Login verifies the operator password and opens a session.
func (s *AdminAuthServiceImpl) Login(ctx context.Context, password string) (string, *domain.AdminSession, error) {
	if password == "" {
		return "", nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, s.passwordHash)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", nil, apperror.ErrInvalidCredentials()
	}

	session := newSession(uuid.NewString(), s.now(), s.sessionTTL)

	token, err := s.tokenSvc.Generate(session)
	if err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", nil, apperror.InternalError(fmt.Errorf("save session: %w", err))
	}

	return token, session, nil
}

// Authenticate resolves a bearer token to a live session. A well-formed
// token whose session was revoked is rejected.
func (s *AdminAuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.AdminSession, error) {
	claims, err := s.tokenSvc.Validate(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, apperror.ErrInvalidToken()
		}
		return nil, apperror.InternalError(fmt.Errorf("load session: %w", err))
	}
	if session.IsExpired(s.now()) {
		return nil, apperror.ErrInvalidToken()
	}
	return session, nil
}

// Logout revokes the session behind token. Revoking an unknown session is
// not an error.
func (s *AdminAuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenSvc.Validate(token)
	if err != nil {
		return apperror.ErrInvalidToken()
	}
	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return apperror.InternalError(fmt.Errorf("delete session: %w", err))
	}
	return nil
}
