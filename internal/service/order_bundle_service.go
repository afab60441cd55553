package service

import (
	"context"
	"fmt"

	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"

	"github.com/rs/zerolog"
)

// bundleStep fills one part of the bundle. Each step may depend on fields
// set by the steps before it.
type bundleStep struct {
	name string
	run  func(ctx context.Context, b *domain.OrderBundle) error
}

// OrderBundleServiceImpl implements ports.OrderBundleService as an ordered
// pipeline: order, purchaser, address, items. The first failing step ends
// the fetch. There are no retries.
type OrderBundleServiceImpl struct {
	orders     ports.OrderRepository
	purchasers ports.PurchaserRepository
	addresses  ports.AddressRepository
	items      ports.LineItemRepository
	steps      []bundleStep
	log        zerolog.Logger
}

// NewOrderBundleService creates a new OrderBundleServiceImpl.
func NewOrderBundleService(
	orders ports.OrderRepository,
	purchasers ports.PurchaserRepository,
	addresses ports.AddressRepository,
	items ports.LineItemRepository,
	log zerolog.Logger,
) *OrderBundleServiceImpl {
	s := &OrderBundleServiceImpl{
		orders:     orders,
		purchasers: purchasers,
		addresses:  addresses,
		items:      items,
		log:        log,
	}
	s.steps = []bundleStep{
		{name: "order", run: s.loadOrder},
		{name: "purchaser", run: s.loadPurchaser},
		{name: "address", run: s.loadAddress},
		{name: "items", run: s.loadItems},
	}
	return s
}

// Fetch builds a fresh bundle for orderID.
func (s *OrderBundleServiceImpl) Fetch(ctx context.Context, orderID int64) (*domain.OrderBundle, error) {
	b := &domain.OrderBundle{Order: domain.Order{ID: orderID}}

	for _, step := range s.steps {
		if err := step.run(ctx, b); err != nil {
			s.log.Warn().Err(err).Int64("order_id", orderID).Str("step", step.name).Msg("order bundle: lookup failed")
			return nil, err
		}
	}
	return b, nil
}

func (s *OrderBundleServiceImpl) loadOrder(ctx context.Context, b *domain.OrderBundle) error {
	order, err := s.orders.GetByID(ctx, b.Order.ID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", b.Order.ID, err)
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}
	b.Order = *order
	return nil
}

func (s *OrderBundleServiceImpl) loadPurchaser(ctx context.Context, b *domain.OrderBundle) error {
	if b.Order.UserID == nil {
		return domain.ErrPurchaserNotFound
	}
	p, err := s.purchasers.GetByID(ctx, *b.Order.UserID)
	if err != nil {
		return fmt.Errorf("load purchaser %d: %w", *b.Order.UserID, err)
	}
	// A purchaser who cannot be mailed is as good as missing.
	if p == nil || !p.HasEmail() {
		return domain.ErrPurchaserNotFound
	}
	b.Purchaser = *p
	return nil
}

func (s *OrderBundleServiceImpl) loadAddress(ctx context.Context, b *domain.OrderBundle) error {
	if b.Order.ShippingAddressID == nil {
		return domain.ErrAddressNotFound
	}
	addr, err := s.addresses.GetByID(ctx, *b.Order.ShippingAddressID)
	if err != nil {
		return fmt.Errorf("load address %d: %w", *b.Order.ShippingAddressID, err)
	}
	if addr == nil {
		return domain.ErrAddressNotFound
	}
	b.Address = *addr
	return nil
}

func (s *OrderBundleServiceImpl) loadItems(ctx context.Context, b *domain.OrderBundle) error {
	items, err := s.items.ListByOrderID(ctx, b.Order.ID)
	if err != nil {
		return fmt.Errorf("load items for order %d: %w", b.Order.ID, err)
	}
	if len(items) == 0 {
		return domain.ErrItemsNotFound
	}
	b.Items = items
	return nil
}
