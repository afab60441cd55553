package ports

import (
	"context"
	"time"

	"order-webhook-service/internal/core/domain"
)

// SignatureService handles HMAC-SHA256 signing and verification of webhook
// bodies.
type SignatureService interface {
	Sign(secret string, payload []byte) string
	Verify(secret string, payload []byte, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles admin session JWTs.
type TokenService interface {
	Generate(session *domain.AdminSession) (string, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionStore holds live admin sessions. Get returns
// domain.ErrSessionNotFound for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, session *domain.AdminSession) error
	Get(ctx context.Context, id string) (*domain.AdminSession, error)
	Delete(ctx context.Context, id string) error
}

// EventDeduper suppresses repeated deliveries of the same gateway event.
type EventDeduper interface {
	// FirstDelivery atomically records eventID and reports whether this is
	// the first time it has been seen within ttl.
	FirstDelivery(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	// Forget drops the record so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}

// --- Outbound collaborators ---

// PaymentCapturer converts an authorized payment into a settled charge.
type PaymentCapturer interface {
	Capture(ctx context.Context, paymentID string, amount int64, currency string) (*domain.CaptureResult, error)
}

// Mailer delivers a rendered HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// --- Service Ports (Business Logic) ---

// OrderBundleService assembles the consolidated order view.
type OrderBundleService interface {
	Fetch(ctx context.Context, orderID int64) (*domain.OrderBundle, error)
}

// NotificationRenderer turns a bundle into a finished confirmation.
type NotificationRenderer interface {
	Render(bundle *domain.OrderBundle) (*domain.RenderedNotification, error)
}

// NotificationService runs the confirmation chain: aggregate, render, send.
type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, orderID int64) error
	Preview(ctx context.Context, orderID int64) (*domain.RenderedNotification, error)
}

// WebhookService verifies and dispatches gateway events.
type WebhookService interface {
	HandleEvent(ctx context.Context, req WebhookRequest) (domain.WebhookOutcome, error)
}

// WebhookRequest is one inbound delivery as received off the wire.
type WebhookRequest struct {
	Body      []byte
	Signature string
	EventID   string // optional gateway delivery id
}

// AdminAuthService issues and checks operator sessions.
type AdminAuthService interface {
	Login(ctx context.Context, password string) (string, *domain.AdminSession, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.AdminSession, error)
}

// AuditService records audit entries (async).
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
