package service

import (
	"errors"
	"fmt"
	"time"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

const adminSubject = "admin"

// JWTTokenService implements ports.TokenService using HS256 JWT. The token
// carries the session id as jti; lifetime comes from the session itself.
type JWTTokenService struct {
	secret []byte
	issuer string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(secret string, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Generate creates a signed JWT for the given admin session.
func (s *JWTTokenService) Generate(session *domain.AdminSession) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   adminSubject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" {
		return nil, errors.New("missing jti claim")
	}

	out := &ports.TokenClaims{SessionID: claims.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

var _ ports.TokenService = (*JWTTokenService)(nil)

func newSession(id string, now time.Time, ttl time.Duration) *domain.AdminSession {
	return &domain.AdminSession{
		ID:        id,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
	}
}
