package responserepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
)

type key struct {
	eventID domain.EventID
	userID  domain.UserID
}

// Repo is an in-memory implementation of responserepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	m    map[key]responserepo.Response
	byID map[domain.ResponseID]key
}

func NewRepo() *Repo {
	return &Repo{
		m:    make(map[key]responserepo.Response),
		byID: make(map[domain.ResponseID]key),
	}
}

func (r *Repo) Find(ctx context.Context, eventID domain.EventID, userID domain.UserID) (responserepo.Response, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[key{eventID: eventID, userID: userID}]
	if !ok {
		return responserepo.Response{}, responserepo.ErrNotFound
	}
	return v, nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID domain.EventID) ([]responserepo.Response, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]responserepo.Response, 0)
	for k, v := range r.m {
		if k.eventID == eventID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *Repo) Upsert(ctx context.Context, rec responserepo.Response) (responserepo.Response, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{eventID: rec.EventID, userID: rec.UserID}

	if rec.ID == "" {
		// A row may already exist for the pair; keep its identity.
		if existing, ok := r.m[k]; ok {
			rec.ID = existing.ID
		} else {
			rec.ID = domain.ResponseID(uuid.NewString())
		}
	}

	// Relocate when an update moves a row ID across pairs (does not happen in
	// practice; kept for map consistency).
	if prev, ok := r.byID[rec.ID]; ok && prev != k {
		delete(r.m, prev)
	}

	r.m[k] = rec
	r.byID[rec.ID] = k
	return rec, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.ResponseID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.byID[id]
	if !ok {
		return responserepo.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.m, k)
	return nil
}
