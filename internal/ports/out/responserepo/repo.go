package responserepo

import (
	"context"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// Response is the persistence shape of one RSVP row. Exactly one row exists
// per (event, user) pair.
type Response struct {
	ID      domain.ResponseID
	EventID domain.EventID
	UserID  domain.UserID

	Status    domain.RSVPStatus
	Guests    int
	Anonymous bool
	UpdatedAt time.Time
}

// Repository provides access to persisted RSVP rows.
type Repository interface {
	// Find returns the row for (event, user). If it does not exist,
	// ErrNotFound is returned.
	Find(ctx context.Context, eventID domain.EventID, userID domain.UserID) (Response, error)

	// ListByEvent returns all rows for an event, ordered by user ID.
	ListByEvent(ctx context.Context, eventID domain.EventID) ([]Response, error)

	// Upsert writes r. When r.ID is empty a new row is inserted and the
	// returned Response carries the assigned ID; otherwise the existing row
	// is updated in place.
	Upsert(ctx context.Context, r Response) (Response, error)

	// Delete removes the row with the given ID. ErrNotFound is returned when
	// no such row exists.
	Delete(ctx context.Context, id domain.ResponseID) error
}
