package notification

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupePrefix = "hr:notification:seen:"

// Deduplicator remembers delivered event ids so a redelivered message is
// handled once.
type Deduplicator struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewDeduplicator(client redis.Cmdable, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduplicator{client: client, ttl: ttl}
}

func Key(eventID string) string {
	return dedupePrefix + eventID
}

// FirstDelivery claims eventID and reports whether this call was the first.
func (d *Deduplicator) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, Key(eventID), "1", d.ttl).Result()
}

// Forget releases a claim so a failed delivery can be retried.
func (d *Deduplicator) Forget(ctx context.Context, eventID string) error {
	return d.client.Del(ctx, Key(eventID)).Err()
}
