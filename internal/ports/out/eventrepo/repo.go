package eventrepo

import (
	"context"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// Event is the persistence shape of an event record.
// It is not an HTTP DTO.
type Event struct {
	ID domain.EventID

	Name        string
	Description *string

	// StartsAt/EndsAt are nil while the schedule is unset.
	StartsAt *time.Time
	EndsAt   *time.Time

	// MaxGuestLimit caps guests per response; zero disallows guests.
	MaxGuestLimit int

	// Online marks the event as held remotely rather than at a venue.
	Online bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted events.
type Repository interface {
	// Create inserts e with a repository-assigned ID and returns the stored
	// record.
	Create(ctx context.Context, e Event) (Event, error)

	// Save updates an existing event. ErrNotFound is returned when the event
	// does not exist.
	Save(ctx context.Context, e Event) error

	GetByID(ctx context.Context, id domain.EventID) (Event, error)

	// Exists reports whether id resolves to an event record.
	Exists(ctx context.Context, id domain.EventID) (bool, error)
}
