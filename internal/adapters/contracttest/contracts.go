// Package contracttest holds storage-agnostic behavior suites. Every adapter
// that implements a ports/out interface runs the matching suite so that
// memory, postgres, and redis backends stay interchangeable.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	aggcacheport "github.com/meetstack/event-rsvp-api/internal/ports/out/aggcache"
	eventrepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
	responserepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
)

type CleanupFunc = func()

type ResponseRepoFactory func(t *testing.T) (responserepoport.Repository, CleanupFunc)
type EventRepoFactory func(t *testing.T) (eventrepoport.Repository, CleanupFunc)

// AggregateCacheFactory returns a cache plus a function that advances the
// cache's notion of time, used to exercise TTL expiry.
type AggregateCacheFactory func(t *testing.T) (aggcacheport.Cache, func(d time.Duration), CleanupFunc)

func RunResponseRepo(t *testing.T, newRepo ResponseRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()

	// Missing rows surface ErrNotFound.
	if _, err := repo.Find(ctx, 1, 1); !errors.Is(err, responserepoport.ErrNotFound) {
		t.Fatalf("Find on empty repo: err=%v, want ErrNotFound", err)
	}

	// Insert assigns an ID.
	stored, err := repo.Upsert(ctx, responserepoport.Response{
		EventID:   1,
		UserID:    7,
		Status:    domain.StatusAttending,
		Guests:    2,
		Anonymous: true,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if stored.ID == "" {
		t.Fatalf("Upsert did not assign an ID")
	}

	got, err := repo.Find(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ID != stored.ID || got.Status != domain.StatusAttending || got.Guests != 2 || !got.Anonymous {
		t.Fatalf("Find returned %+v, want stored row", got)
	}

	// Upserting the same (event, user) pair updates in place and keeps the ID.
	updated, err := repo.Upsert(ctx, responserepoport.Response{
		EventID:   1,
		UserID:    7,
		Status:    domain.StatusWaitingList,
		Guests:    0,
		Anonymous: false,
		UpdatedAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != stored.ID {
		t.Fatalf("update changed ID: got %q, want %q", updated.ID, stored.ID)
	}
	got, err = repo.Find(ctx, 1, 7)
	if err != nil {
		t.Fatalf("Find after update: %v", err)
	}
	if got.Status != domain.StatusWaitingList || got.Guests != 0 || got.Anonymous {
		t.Fatalf("Find after update returned %+v", got)
	}

	// Listing is scoped to the event and ordered by user ID.
	if _, err := repo.Upsert(ctx, responserepoport.Response{
		EventID: 1, UserID: 3, Status: domain.StatusNotAttending, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Upsert user 3: %v", err)
	}
	if _, err := repo.Upsert(ctx, responserepoport.Response{
		EventID: 2, UserID: 7, Status: domain.StatusAttending, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Upsert other event: %v", err)
	}

	rows, err := repo.ListByEvent(ctx, 1)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListByEvent returned %d rows, want 2", len(rows))
	}
	if rows[0].UserID != 3 || rows[1].UserID != 7 {
		t.Fatalf("ListByEvent order = [%d %d], want [3 7]", rows[0].UserID, rows[1].UserID)
	}

	// Delete removes the row; deleting again reports ErrNotFound.
	if err := repo.Delete(ctx, stored.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Find(ctx, 1, 7); !errors.Is(err, responserepoport.ErrNotFound) {
		t.Fatalf("Find after delete: err=%v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, stored.ID); !errors.Is(err, responserepoport.ErrNotFound) {
		t.Fatalf("Delete twice: err=%v, want ErrNotFound", err)
	}
}

func RunEventRepo(t *testing.T, newRepo EventRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(2000, 0).UTC()

	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, eventrepoport.ErrNotFound) {
		t.Fatalf("GetByID on empty repo: err=%v, want ErrNotFound", err)
	}
	ok, err := repo.Exists(ctx, 42)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatalf("Exists reported true for unknown event")
	}

	desc := "monthly meetup"
	created, err := repo.Create(ctx, eventrepoport.Event{
		Name:          "August Meetup",
		Description:   &desc,
		MaxGuestLimit: 3,
		Online:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID < 1 {
		t.Fatalf("Create assigned ID %d, want >= 1", created.ID)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "August Meetup" || got.MaxGuestLimit != 3 || !got.Online {
		t.Fatalf("GetByID returned %+v", got)
	}
	if got.Description == nil || *got.Description != desc {
		t.Fatalf("GetByID description = %v, want %q", got.Description, desc)
	}

	ok, err = repo.Exists(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("Exists = (%v, %v), want (true, nil)", ok, err)
	}

	got.Name = "August Meetup (moved)"
	got.MaxGuestLimit = 0
	got.Online = false
	got.UpdatedAt = now.Add(time.Hour)
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reread, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID after save: %v", err)
	}
	if reread.Name != "August Meetup (moved)" || reread.MaxGuestLimit != 0 || reread.Online {
		t.Fatalf("Save did not persist: %+v", reread)
	}

	missing := got
	missing.ID = created.ID + 100
	if err := repo.Save(ctx, missing); !errors.Is(err, eventrepoport.ErrNotFound) {
		t.Fatalf("Save of unknown event: err=%v, want ErrNotFound", err)
	}
}

func RunAggregateCache(t *testing.T, newCache AggregateCacheFactory) {
	t.Helper()
	ctx := context.Background()

	cache, advance, cleanup := newCache(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, ok, err := cache.Get(ctx, 1); err != nil || ok {
		t.Fatalf("Get on empty cache = (ok=%v, err=%v), want miss", ok, err)
	}

	agg := domain.Aggregate{
		All: domain.ResponseGroup{
			Responses: []domain.AttendeeView{{UserID: 5, Name: "Ada", Status: domain.StatusAttending, Guests: 1}},
			Count:     2,
		},
		Attending: domain.ResponseGroup{
			Responses: []domain.AttendeeView{{UserID: 5, Name: "Ada", Status: domain.StatusAttending, Guests: 1}},
			Count:     2,
		},
	}
	if err := cache.Set(ctx, 1, agg, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := cache.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("Get missed immediately after Set")
	}
	if got.Attending.Count != 2 || len(got.Attending.Responses) != 1 || got.Attending.Responses[0].UserID != 5 {
		t.Fatalf("Get returned %+v", got)
	}

	// Entries are scoped per event.
	if _, ok, _ := cache.Get(ctx, 2); ok {
		t.Fatalf("Get for another event hit unexpectedly")
	}

	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, 1); ok {
		t.Fatalf("Get hit after Invalidate")
	}

	// Invalidating an absent entry is not an error.
	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("Invalidate absent: %v", err)
	}

	// TTL expiry.
	if err := cache.Set(ctx, 3, agg, time.Minute); err != nil {
		t.Fatalf("Set for expiry: %v", err)
	}
	advance(30 * time.Second)
	if _, ok, _ := cache.Get(ctx, 3); !ok {
		t.Fatalf("Get missed before TTL elapsed")
	}
	advance(31 * time.Second)
	if _, ok, _ := cache.Get(ctx, 3); ok {
		t.Fatalf("Get hit after TTL elapsed")
	}
}
