package eventsettings

import (
	"context"
	"errors"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
)

// Provider implements settings.Provider on top of the event repository: the
// guest limit lives on each event record, the attending limit is a global
// deployment setting.
type Provider struct {
	events       eventrepo.Repository
	maxAttending int
}

func NewProvider(events eventrepo.Repository, maxAttending int) *Provider {
	return &Provider{events: events, maxAttending: maxAttending}
}

func (p *Provider) MaxGuestLimit(ctx context.Context, eventID domain.EventID) (int, error) {
	e, err := p.events.GetByID(ctx, eventID)
	if errors.Is(err, eventrepo.ErrNotFound) {
		// Unknown events allow no guests, mirroring an unset limit.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return e.MaxGuestLimit, nil
}

func (p *Provider) MaxAttendingLimit(ctx context.Context) (int, error) {
	_ = ctx
	return p.maxAttending, nil
}
