package rsvp

import "github.com/meetstack/event-rsvp-api/internal/domain"

// SaveInput is the caller's requested response. Guests is clamped to the
// event's guest limit and may be forced to zero by the waiting-list policy.
type SaveInput struct {
	Status    domain.RSVPStatus
	Anonymous bool
	Guests    int
}
