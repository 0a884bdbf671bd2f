package aggcache

import (
	"context"
	"sync"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/clock"
)

type entry struct {
	agg       domain.Aggregate
	expiresAt time.Time
}

// Cache is an in-memory implementation of aggcache.Cache with lazy TTL
// expiry. It is safe for concurrent use.
type Cache struct {
	clk clock.Clock

	mu sync.Mutex
	m  map[domain.EventID]entry
}

func NewCache(clk clock.Clock) *Cache {
	return &Cache{
		clk: clk,
		m:   make(map[domain.EventID]entry),
	}
}

func (c *Cache) Get(ctx context.Context, eventID domain.EventID) (domain.Aggregate, bool, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[eventID]
	if !ok {
		return domain.Aggregate{}, false, nil
	}
	if !c.clk.Now().Before(e.expiresAt) {
		delete(c.m, eventID)
		return domain.Aggregate{}, false, nil
	}
	return e.agg, true, nil
}

func (c *Cache) Set(ctx context.Context, eventID domain.EventID, agg domain.Aggregate, ttl time.Duration) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[eventID] = entry{agg: agg, expiresAt: c.clk.Now().Add(ttl)}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, eventID domain.EventID) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, eventID)
	return nil
}
