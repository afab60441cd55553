package postgres

import (
	"context"
	"fmt"
	"strings"
)

// storefrontTables are the tables the bundle lookups and the audit trail read
// or write. The storefront owns the schema; this service only needs it present.
var storefrontTables = []string{
	"orders", "users", "addresses", "order_items", "products", "product_variants", "audit_logs",
}

// HealthCheck reports the database ready once it answers and every table
// the webhook path depends on exists.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping lists any missing storefront table; a reachable database with a
// partial schema is still reported unhealthy.
func (h *HealthCheck) Ping(ctx context.Context) error {
	rows, err := h.pool.Query(ctx,
		`SELECT t FROM unnest($1::text[]) AS t WHERE to_regclass(t) IS NULL`,
		storefrontTables,
	)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("checking schema: %w", err)
		}
		missing = append(missing, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
