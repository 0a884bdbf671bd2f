package domain

import "time"

// RSVPStatus is the admission state of a response.
type RSVPStatus string

const (
	StatusAttending    RSVPStatus = "attending"
	StatusNotAttending RSVPStatus = "not_attending"
	StatusWaitingList  RSVPStatus = "waiting_list"
	StatusNoStatus     RSVPStatus = "no_status"
)

// Valid reports whether s is one of the four accepted statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case StatusAttending, StatusNotAttending, StatusWaitingList, StatusNoStatus:
		return true
	}
	return false
}

// GroupStatuses are the statuses a persisted response can be grouped under.
// no_status is the absence of a response and never appears in an aggregate.
func GroupStatuses() []RSVPStatus {
	return []RSVPStatus{StatusAttending, StatusNotAttending, StatusWaitingList}
}

// ResponseRecord is one user's RSVP for one event as returned by the engine.
// The zero value means "not applicable" (invalid event or user).
type ResponseRecord struct {
	ID        ResponseID `json:"id"`
	EventID   EventID    `json:"eventId"`
	UserID    UserID     `json:"userId"`
	Timestamp time.Time  `json:"timestamp"`
	Status    RSVPStatus `json:"status"`
	Guests    int        `json:"guests"`
	Anonymous bool       `json:"anonymous"`
}

// AttendeeView is a response resolved against the user directory and role
// resolver for presentation. UserID stays the real identity; masking for
// unprivileged viewers is the transport layer's concern.
type AttendeeView struct {
	UserID     UserID     `json:"userId"`
	Name       string     `json:"name"`
	AvatarURL  string     `json:"avatarUrl"`
	ProfileURL string     `json:"profileUrl"`
	Role       string     `json:"role"`
	Timestamp  time.Time  `json:"timestamp"`
	Status     RSVPStatus `json:"status"`
	Guests     int        `json:"guests"`
	Anonymous  bool       `json:"anonymous"`
}

// ResponseGroup is one status bucket of an aggregate. Count is the number of
// responders plus the sum of their guests.
type ResponseGroup struct {
	Responses []AttendeeView `json:"responses"`
	Count     int            `json:"count"`
}

// Aggregate is the grouped view of all responses for an event.
type Aggregate struct {
	All          ResponseGroup `json:"all"`
	Attending    ResponseGroup `json:"attending"`
	NotAttending ResponseGroup `json:"not_attending"`
	WaitingList  ResponseGroup `json:"waiting_list"`
}
