package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"order-webhook-service/internal/metrics"
	"order-webhook-service/pkg/apperror"
	"order-webhook-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitStore counts hits per key in fixed windows.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// RateLimitRule caps one route group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the per-group limits.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"webhook":     {Limit: 600, Window: time.Minute},
		"admin_login": {Limit: 10, Window: time.Minute},
		"admin":       {Limit: 60, Window: time.Minute},
	}
}

// RateLimiter enforces rule for group. When the store fails the request is
// let through and the failure logged.
func RateLimiter(store RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, resetAt, err := store.Hit(c.Request.Context(), rateLimitKey(c, group), rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request")
			c.Next()
			return
		}

		remaining := rule.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(rule.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > rule.Limit {
			metrics.RateLimitHits.WithLabelValues(group).Inc()
			retryAfter := int64(math.Ceil(time.Until(resetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Abort(c, apperror.ErrRateLimitExceeded())
			return
		}

		c.Next()
	}
}

// rateLimitKey keys authenticated admin traffic by session and everything
// else by client IP.
func rateLimitKey(c *gin.Context, group string) string {
	if s, ok := AdminSession(c); ok {
		return group + ":session:" + s.ID
	}
	return group + ":ip:" + c.ClientIP()
}
