package userdir

import (
	"context"
	"sync"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/userdir"
)

// Directory is an in-memory implementation of userdir.Directory.
// It is safe for concurrent use.
type Directory struct {
	mu sync.RWMutex
	m  map[domain.UserID]userdir.Profile
}

func NewDirectory() *Directory {
	return &Directory{m: make(map[domain.UserID]userdir.Profile)}
}

// Put registers or replaces a user profile.
func (d *Directory) Put(p userdir.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[p.UserID] = p
}

func (d *Directory) Lookup(ctx context.Context, userID domain.UserID) (userdir.Profile, error) {
	_ = ctx
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.m[userID]
	if !ok {
		return userdir.Profile{}, userdir.ErrNotFound
	}
	return p, nil
}
