package userdir

import (
	"context"
	"errors"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// ErrNotFound indicates the requested user does not exist in the directory.
var ErrNotFound = errors.New("user not found")

// Profile is the presentation data the directory holds per user.
type Profile struct {
	UserID      domain.UserID
	DisplayName string
	AvatarURL   string
	ProfileURL  string
}

// Directory is a read-only lookup of user presentation data. Responses whose
// user cannot be resolved are dropped from aggregates.
type Directory interface {
	Lookup(ctx context.Context, userID domain.UserID) (Profile, error)
}
