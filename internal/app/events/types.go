package events

import "time"

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreateEventInput struct {
	Name        string
	Description *string
	StartsAt    *time.Time
	EndsAt      *time.Time

	// MaxGuestLimit caps guests per response; zero disallows guests.
	MaxGuestLimit int

	Online bool
}

type UpdateEventInput struct {
	// Name is optional and cannot be null.
	Name Optional[string]

	Description Optional[string]
	StartsAt    Optional[time.Time]
	EndsAt      Optional[time.Time]

	// MaxGuestLimit cannot be null; null resets it to zero.
	MaxGuestLimit Optional[int]

	// Online cannot be null; null resets it to false.
	Online Optional[bool]
}
