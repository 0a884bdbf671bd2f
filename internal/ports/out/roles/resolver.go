package roles

import (
	"context"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// DefaultRole is the implicit lowest-precedence role assigned to users who
// hold no configured role.
const DefaultRole = "Member"

// Resolver maps users to role labels and defines the precedence order used
// when sorting response lists.
type Resolver interface {
	// RolesOrdered returns the configured role labels, highest precedence
	// first. DefaultRole is implicit and not included.
	RolesOrdered(ctx context.Context) ([]string, error)

	// RoleOf returns the role label for a user, or DefaultRole when the user
	// holds no configured role.
	RoleOf(ctx context.Context, userID domain.UserID) (string, error)
}
