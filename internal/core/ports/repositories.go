package ports

import (
	"context"

	"order-webhook-service/internal/core/domain"
)

// Lookups return (nil, nil) when the row does not exist so the caller can
// decide which not-found error applies.

// OrderRepository reads order rows.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
}

// PurchaserRepository reads the users who place orders.
type PurchaserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Purchaser, error)
}

// AddressRepository reads shipping addresses.
type AddressRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ShippingAddress, error)
}

// LineItemRepository reads an order's items joined with product and variant
// snapshots. An order without items yields an empty slice.
type LineItemRepository interface {
	ListByOrderID(ctx context.Context, orderID int64) ([]domain.LineItem, error)
}

// AuditRepository persists admin audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
