// Package redis backs admin sessions, duplicate-delivery suppression and
// rate limiting with Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"order-webhook-service/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	dialTimeout    = 3 * time.Second
	commandTimeout = time.Second
)

// NewClient connects to Redis and pings it once.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info().Str("addr", cfg.Addr()).Int("db", cfg.DB).Msg("redis connected")
	return client, nil
}

// HealthCheck reports Redis reachability on /ready.
type HealthCheck struct {
	client *goredis.Client
}

func NewHealthCheck(client *goredis.Client) *HealthCheck {
	return &HealthCheck{client: client}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *HealthCheck) Name() string { return "redis" }
