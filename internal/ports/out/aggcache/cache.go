package aggcache

import (
	"context"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// Cache stores computed response aggregates keyed by event.
//
// The cache is an optimization, never a correctness dependency: callers must
// treat a Get error as a miss and tolerate Set/Invalidate failures by reading
// through to the repository.
type Cache interface {
	// Get returns the cached aggregate for the event and whether one was
	// present.
	Get(ctx context.Context, eventID domain.EventID) (domain.Aggregate, bool, error)

	// Set stores the aggregate for the event with the given TTL.
	Set(ctx context.Context, eventID domain.EventID, agg domain.Aggregate, ttl time.Duration) error

	// Invalidate drops the cached aggregate for the event, if any.
	Invalidate(ctx context.Context, eventID domain.EventID) error
}
