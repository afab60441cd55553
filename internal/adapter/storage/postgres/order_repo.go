package postgres

import (
	"context"
	"errors"
	"fmt"

	"order-webhook-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// GetByID fetches an order by id.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, user_id, created_at, total_amount::float8, status, payment_id, currency,
		display_currency, display_total_amount::float8, payment_method, shipping_address_id
		FROM orders WHERE id = $1`

	o := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.CreatedAt, &o.TotalAmount, &o.Status, &o.PaymentID, &o.Currency,
		&o.DisplayCurrency, &o.DisplayTotalAmount, &o.PaymentMethod, &o.ShippingAddressID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return o, nil
}
