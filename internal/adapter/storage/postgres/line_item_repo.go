package postgres

import (
	"context"
	"fmt"

	"order-webhook-service/internal/core/domain"
)

// LineItemRepo implements ports.LineItemRepository.
type LineItemRepo struct {
	pool Pool
}

// NewLineItemRepo creates a new LineItemRepo.
func NewLineItemRepo(pool Pool) *LineItemRepo {
	return &LineItemRepo{pool: pool}
}

// ListByOrderID returns an order's items with product and variant snapshots.
// Products or variants that no longer exist leave their fields NULL.
func (r *LineItemRepo) ListByOrderID(ctx context.Context, orderID int64) ([]domain.LineItem, error) {
	query := `SELECT oi.id, oi.quantity, oi.price::float8, oi.total_price::float8,
			p.title, p.image_url, COALESCE(pv.size, pv.age_group) AS variant_label
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN product_variants pv ON pv.id = oi.variant_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(
			&li.ID, &li.Quantity, &li.Price, &li.TotalPrice,
			&li.Product.Title, &li.Product.ImageURL, &li.Variant.Label,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
