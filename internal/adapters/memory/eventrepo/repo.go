package eventrepo

import (
	"context"
	"sync"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
)

// Repo is an in-memory implementation of eventrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	m      map[domain.EventID]eventrepo.Event
	nextID domain.EventID
}

func NewRepo() *Repo {
	return &Repo{
		m:      make(map[domain.EventID]eventrepo.Event),
		nextID: 1,
	}
}

func (r *Repo) Create(ctx context.Context, e eventrepo.Event) (eventrepo.Event, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.m[e.ID] = e
	return e, nil
}

func (r *Repo) Save(ctx context.Context, e eventrepo.Event) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[e.ID]; !ok {
		return eventrepo.ErrNotFound
	}
	r.m[e.ID] = e
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.EventID) (eventrepo.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.m[id]
	if !ok {
		return eventrepo.Event{}, eventrepo.ErrNotFound
	}
	return e, nil
}

func (r *Repo) Exists(ctx context.Context, id domain.EventID) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[id]
	return ok, nil
}
