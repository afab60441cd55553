package postgres

import (
	"context"
	"errors"
	"fmt"

	"order-webhook-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PurchaserRepo implements ports.PurchaserRepository over the users table.
type PurchaserRepo struct {
	pool Pool
}

// NewPurchaserRepo creates a new PurchaserRepo.
func NewPurchaserRepo(pool Pool) *PurchaserRepo {
	return &PurchaserRepo{pool: pool}
}

// GetByID fetches a user by id. Email may be NULL; the caller decides what
// that means.
func (r *PurchaserRepo) GetByID(ctx context.Context, id int64) (*domain.Purchaser, error) {
	query := `SELECT id, name, email FROM users WHERE id = $1`

	p := &domain.Purchaser{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return p, nil
}
