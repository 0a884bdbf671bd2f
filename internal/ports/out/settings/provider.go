package settings

import (
	"context"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// Provider exposes the admission-related settings the engine consumes.
type Provider interface {
	// MaxGuestLimit is the per-event cap on guests per response. Zero means
	// no guests are allowed. Events without a configured limit report zero.
	MaxGuestLimit(ctx context.Context, eventID domain.EventID) (int, error)

	// MaxAttendingLimit is the global cap on attending seats
	// (responders plus their guests) per event.
	MaxAttendingLimit(ctx context.Context) (int, error)
}
