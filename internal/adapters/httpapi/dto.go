package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/meetstack/event-rsvp-api/internal/app/events"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
)

type createEventRequest struct {
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	StartsAt      *time.Time `json:"startsAt,omitempty"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	MaxGuestLimit *int       `json:"maxGuestLimit,omitempty"`
	Online        *bool      `json:"online,omitempty"`
}

// updateEventRequest uses tri-state fields: omitted leaves a field unchanged,
// null clears it, a value replaces it.
type updateEventRequest struct {
	Name          nullable.Nullable[string]    `json:"name,omitempty"`
	Description   nullable.Nullable[string]    `json:"description,omitempty"`
	StartsAt      nullable.Nullable[time.Time] `json:"startsAt,omitempty"`
	EndsAt        nullable.Nullable[time.Time] `json:"endsAt,omitempty"`
	MaxGuestLimit nullable.Nullable[int]       `json:"maxGuestLimit,omitempty"`
	Online        nullable.Nullable[bool]      `json:"online,omitempty"`
}

type saveRSVPRequest struct {
	Status    string `json:"status"`
	Anonymous bool   `json:"anonymous"`
	Guests    int    `json:"guests"`
}

type eventResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   *string    `json:"description,omitempty"`
	StartsAt      *time.Time `json:"startsAt,omitempty"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	MaxGuestLimit int        `json:"maxGuestLimit"`
	Online        bool       `json:"online"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toEventResponse(e eventrepo.Event) eventResponse {
	return eventResponse{
		ID:            int64(e.ID),
		Name:          e.Name,
		Description:   e.Description,
		StartsAt:      e.StartsAt,
		EndsAt:        e.EndsAt,
		MaxGuestLimit: e.MaxGuestLimit,
		Online:        e.Online,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func optionalFromNullable[T any](n nullable.Nullable[T]) events.Optional[T] {
	if !n.IsSpecified() {
		return events.Unspecified[T]()
	}
	if n.IsNull() {
		return events.Null[T]()
	}
	return events.Some(n.MustGet())
}

func (r updateEventRequest) toInput() events.UpdateEventInput {
	return events.UpdateEventInput{
		Name:          optionalFromNullable(r.Name),
		Description:   optionalFromNullable(r.Description),
		StartsAt:      optionalFromNullable(r.StartsAt),
		EndsAt:        optionalFromNullable(r.EndsAt),
		MaxGuestLimit: optionalFromNullable(r.MaxGuestLimit),
		Online:        optionalFromNullable(r.Online),
	}
}
