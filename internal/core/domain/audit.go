package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited admin action.
type AuditAction string

const (
	AuditActionLogin               AuditAction = "LOGIN"
	AuditActionLoginFailed         AuditAction = "LOGIN_FAILED"
	AuditActionLogout              AuditAction = "LOGOUT"
	AuditActionViewOrder           AuditAction = "VIEW_ORDER"
	AuditActionPreviewConfirmation AuditAction = "PREVIEW_CONFIRMATION"
	AuditActionResendConfirmation  AuditAction = "RESEND_CONFIRMATION"
)

// AuditLog records a single audited admin action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	SessionID    *string     `json:"session_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
