package service

import (
	"testing"
	"time"

	"order-webhook-service/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-key-for-unit-tests"

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "test-issuer")
	session := newSession(uuid.NewString(), time.Now(), time.Hour)

	tokenStr, err := svc.Generate(session)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenStr)

	claims, err := svc.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)
	assert.True(t, session.ExpiresAt.Equal(claims.ExpiresAt))
	assert.True(t, session.IssuedAt.Equal(claims.IssuedAt))
}

func TestJWTTokenService_ExpiredToken(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "test-issuer")
	session := newSession(uuid.NewString(), time.Now().Add(-2*time.Hour), time.Hour)

	tokenStr, err := svc.Generate(session)
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err, "expired token should fail validation")
}

func TestJWTTokenService_InvalidSignature(t *testing.T) {
	svc1 := NewJWTTokenService("secret-1", "issuer")
	svc2 := NewJWTTokenService("secret-2", "issuer")

	tokenStr, err := svc1.Generate(newSession(uuid.NewString(), time.Now(), time.Hour))
	require.NoError(t, err)

	_, err = svc2.Validate(tokenStr)
	assert.Error(t, err, "token signed with different secret should fail")
}

func TestJWTTokenService_WrongIssuer(t *testing.T) {
	other := NewJWTTokenService(testJWTSecret, "someone-else")
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	tokenStr, err := other.Generate(newSession(uuid.NewString(), time.Now(), time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestJWTTokenService_MissingJTI(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	tokenStr, err := svc.Generate(&domain.AdminSession{
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   adminSubject,
		Issuer:    "issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(tokenStr)
	assert.Error(t, err)
}

func TestJWTTokenService_InvalidTokenString(t *testing.T) {
	svc := NewJWTTokenService(testJWTSecret, "issuer")

	_, err := svc.Validate("not.a.valid.jwt")
	assert.Error(t, err)

	_, err = svc.Validate("")
	assert.Error(t, err)
}
