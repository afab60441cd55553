package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventDeduper implements ports.EventDeduper using Redis SET NX.
type EventDeduper struct {
	client *goredis.Client
	prefix string
}

// NewEventDeduper creates a new Redis-backed webhook event deduper.
func NewEventDeduper(client *goredis.Client) *EventDeduper {
	return &EventDeduper{
		client: client,
		prefix: "webhook:event:",
	}
}

// FirstDelivery atomically records eventID for ttl.
// Returns true if the event has not been seen, false if it is a redelivery.
func (d *EventDeduper) FirstDelivery(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	result, err := d.client.SetArgs(ctx, d.prefix+eventID, time.Now().Unix(), goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Key already exists
			return false, nil
		}
		return false, fmt.Errorf("redis event dedupe: %w", err)
	}
	return result == "OK", nil
}

// Forget removes the record for eventID.
func (d *EventDeduper) Forget(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, d.prefix+eventID).Err(); err != nil {
		return fmt.Errorf("redis event forget: %w", err)
	}
	return nil
}
