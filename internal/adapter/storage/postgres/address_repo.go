package postgres

import (
	"context"
	"errors"
	"fmt"

	"order-webhook-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AddressRepo implements ports.AddressRepository.
type AddressRepo struct {
	pool Pool
}

// NewAddressRepo creates a new AddressRepo.
func NewAddressRepo(pool Pool) *AddressRepo {
	return &AddressRepo{pool: pool}
}

// GetByID fetches a shipping address by id.
func (r *AddressRepo) GetByID(ctx context.Context, id int64) (*domain.ShippingAddress, error) {
	// Required lines render as empty text when unset.
	query := `SELECT id, COALESCE(address_line1, ''), address_line2, COALESCE(city, ''),
		COALESCE(state, ''), COALESCE(pincode, ''), phone
		FROM addresses WHERE id = $1`

	a := &domain.ShippingAddress{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.State, &a.Pincode, &a.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address by id: %w", err)
	}
	return a, nil
}
