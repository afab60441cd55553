package domain

import "errors"

// Aggregation failures. Each names the lookup that came back empty.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPurchaserNotFound = errors.New("purchaser not found or has no email")
	ErrAddressNotFound   = errors.New("shipping address not found")
	ErrItemsNotFound     = errors.New("order has no line items")
)

// ErrTemplateUnavailable wraps a failure to load the confirmation template.
var ErrTemplateUnavailable = errors.New("confirmation template unavailable")

// ErrSessionNotFound is returned for unknown, revoked or expired sessions.
var ErrSessionNotFound = errors.New("session not found")
