package roles

import (
	"context"
	"sync"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/roles"
)

// Resolver is a static, in-memory implementation of roles.Resolver.
// It is safe for concurrent use.
type Resolver struct {
	ordered []string

	mu     sync.RWMutex
	byUser map[domain.UserID]string
}

// NewResolver builds a resolver with the given precedence order (highest
// first). Users not assigned a role resolve to roles.DefaultRole.
func NewResolver(ordered []string) *Resolver {
	return &Resolver{
		ordered: append([]string(nil), ordered...),
		byUser:  make(map[domain.UserID]string),
	}
}

// Assign gives a user a role label.
func (r *Resolver) Assign(userID domain.UserID, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userID] = role
}

func (r *Resolver) RolesOrdered(ctx context.Context) ([]string, error) {
	_ = ctx
	return append([]string(nil), r.ordered...), nil
}

func (r *Resolver) RoleOf(ctx context.Context, userID domain.UserID) (string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	if role, ok := r.byUser[userID]; ok {
		return role, nil
	}
	return roles.DefaultRole, nil
}
