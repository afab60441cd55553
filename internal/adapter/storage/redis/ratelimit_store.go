package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimitStore keeps fixed-window hit counters for the HTTP rate limiter.
type RateLimitStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

func NewRateLimitStore(client *goredis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Hit counts one request for key in the current window and returns the
// running count together with the moment the window closes. Windows are
// aligned to multiples of window since the Unix epoch, minimum one second.
func (s *RateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	if window < time.Second {
		window = time.Second
	}
	now := s.now()
	start := now.Truncate(window)
	resetAt := start.Add(window)
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, start.Unix())

	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireAt(ctx, redisKey, resetAt.Add(time.Second))
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("counting %s: %w", key, err)
	}
	return incr.Val(), resetAt, nil
}
