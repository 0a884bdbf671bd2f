package events

import (
	"context"
	"errors"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/clock"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
)

// Service manages event records: the entities responses attach to, carrying
// the per-event guest limit and schedule.
type Service struct {
	events eventrepo.Repository
	clk    clock.Clock
}

func NewService(eventsRepo eventrepo.Repository, clk clock.Clock) *Service {
	return &Service{events: eventsRepo, clk: clk}
}

func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (eventrepo.Event, error) {
	name := domain.NormalizeTitle(in.Name)
	if name == "" {
		return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	if in.MaxGuestLimit < 0 {
		return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid maxGuestLimit", Details: map[string]any{"maxGuestLimit": "must be >= 0"}}
	}
	if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
		return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid schedule", Details: map[string]any{"endsAt": "must be on or after startsAt"}}
	}

	now := s.clk.Now().UTC()
	e := eventrepo.Event{
		Name:          name,
		Description:   cloneStringPtr(in.Description),
		StartsAt:      cloneTimePtrUTC(in.StartsAt),
		EndsAt:        cloneTimePtrUTC(in.EndsAt),
		MaxGuestLimit: in.MaxGuestLimit,
		Online:        in.Online,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.events.Create(ctx, e)
}

func (s *Service) GetEvent(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, &Error{Status: 404, Code: "EVENT_NOT_FOUND", Message: "event not found"}
		}
		return eventrepo.Event{}, err
	}
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id domain.EventID, in UpdateEventInput) (eventrepo.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventrepo.ErrNotFound) {
			return eventrepo.Event{}, &Error{Status: 404, Code: "EVENT_NOT_FOUND", Message: "event not found"}
		}
		return eventrepo.Event{}, err
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "cannot be null"}}
		}
		name := domain.NormalizeTitle(in.Name.Value())
		if name == "" {
			return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
		}
		e.Name = name
	}

	if in.Description.IsSpecified() {
		if in.Description.IsNull() {
			e.Description = nil
		} else {
			v := in.Description.Value()
			e.Description = &v
		}
	}

	if in.StartsAt.IsSpecified() {
		if in.StartsAt.IsNull() {
			e.StartsAt = nil
		} else {
			v := in.StartsAt.Value().UTC()
			e.StartsAt = &v
		}
	}
	if in.EndsAt.IsSpecified() {
		if in.EndsAt.IsNull() {
			e.EndsAt = nil
		} else {
			v := in.EndsAt.Value().UTC()
			e.EndsAt = &v
		}
	}

	if in.MaxGuestLimit.IsSpecified() {
		if in.MaxGuestLimit.IsNull() {
			e.MaxGuestLimit = 0
		} else {
			v := in.MaxGuestLimit.Value()
			if v < 0 {
				return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid maxGuestLimit", Details: map[string]any{"maxGuestLimit": "must be >= 0"}}
			}
			e.MaxGuestLimit = v
		}
	}

	if in.Online.IsSpecified() {
		if in.Online.IsNull() {
			e.Online = false
		} else {
			e.Online = in.Online.Value()
		}
	}

	if e.StartsAt != nil && e.EndsAt != nil && e.EndsAt.Before(*e.StartsAt) {
		return eventrepo.Event{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid schedule", Details: map[string]any{"endsAt": "must be on or after startsAt"}}
	}

	e.UpdatedAt = s.clk.Now().UTC()
	if err := s.events.Save(ctx, e); err != nil {
		return eventrepo.Event{}, err
	}
	return e, nil
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtrUTC(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := p.UTC()
	return &v
}
