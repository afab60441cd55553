package postgres

import (
	"context"
	"fmt"
	"strconv"

	"order-webhook-service/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const applicationName = "order-webhook-service"

// NewPool opens the storefront database and pings it once.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	configurePool(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("dbname", cfg.DBName).
		Int32("max_conns", poolCfg.MaxConns).
		Dur("statement_timeout", cfg.StatementTimeout).
		Msg("storefront database connected")

	return pool, nil
}

// configurePool applies the configured limits on top of the driver defaults.
// Zero values keep the defaults; MinConns above MaxConns is ignored.
func configurePool(poolCfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	params := poolCfg.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}
}
