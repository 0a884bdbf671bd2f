package aggcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

const keyFormat = "rsvp:responses:%d"

// Cache is a Redis implementation of aggcache.Cache storing JSON-encoded
// aggregates with a per-key TTL.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, eventID domain.EventID) (domain.Aggregate, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Aggregate{}, false, nil
	}
	if err != nil {
		return domain.Aggregate{}, false, fmt.Errorf("redis get: %w", err)
	}

	var agg domain.Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		// A corrupt entry is a miss; the caller rebuilds and overwrites it.
		return domain.Aggregate{}, false, nil
	}
	return agg, true, nil
}

func (c *Cache) Set(ctx context.Context, eventID domain.EventID, agg domain.Aggregate, ttl time.Duration) error {
	payload, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(eventID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, eventID domain.EventID) error {
	if err := c.client.Del(ctx, cacheKey(eventID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func cacheKey(eventID domain.EventID) string {
	return fmt.Sprintf(keyFormat, eventID)
}
