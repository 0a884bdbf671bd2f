package domain

// EventID identifies an event record. Values below 1 are invalid.
type EventID int64

// UserID identifies a responding user. Values below 1 are invalid.
type UserID int64

// ResponseID is the storage identity of a persisted RSVP row.
// It is empty until the row is first written.
type ResponseID string
