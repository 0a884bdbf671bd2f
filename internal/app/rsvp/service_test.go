package rsvp_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memaggcache "github.com/meetstack/event-rsvp-api/internal/adapters/memory/aggcache"
	memclock "github.com/meetstack/event-rsvp-api/internal/adapters/memory/clock"
	memeventrepo "github.com/meetstack/event-rsvp-api/internal/adapters/memory/eventrepo"
	memresponserepo "github.com/meetstack/event-rsvp-api/internal/adapters/memory/responserepo"
	memroles "github.com/meetstack/event-rsvp-api/internal/adapters/memory/roles"
	memuserdir "github.com/meetstack/event-rsvp-api/internal/adapters/memory/userdir"

	"github.com/meetstack/event-rsvp-api/internal/adapters/eventsettings"
	"github.com/meetstack/event-rsvp-api/internal/app/rsvp"
	"github.com/meetstack/event-rsvp-api/internal/domain"
	eventrepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
	responserepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
	userdirport "github.com/meetstack/event-rsvp-api/internal/ports/out/userdir"
)

type fixture struct {
	svc       *rsvp.Service
	responses *memresponserepo.Repo
	roles     *memroles.Resolver
	clk       *memclock.ManualClock
	eventID   domain.EventID
}

// newFixture builds a service around memory adapters with one event and ten
// directory-known users (IDs 1..10).
func newFixture(t *testing.T, attendingLimit, guestLimit int) *fixture {
	t.Helper()
	ctx := context.Background()

	responses := memresponserepo.NewRepo()
	events := memeventrepo.NewRepo()
	clk := memclock.NewManualClock(time.Unix(1_700_000_000, 0))
	cache := memaggcache.NewCache(clk)
	rolesResolver := memroles.NewResolver([]string{"Organizer", "Assistant Organizer"})
	users := memuserdir.NewDirectory()

	for i := 1; i <= 10; i++ {
		users.Put(userdirport.Profile{
			UserID:      domain.UserID(i),
			DisplayName: fmt.Sprintf("User %d", i),
			ProfileURL:  fmt.Sprintf("https://example.com/users/%d", i),
		})
	}

	e, err := events.Create(ctx, eventrepoport.Event{
		Name:          "Trail Day",
		MaxGuestLimit: guestLimit,
		CreatedAt:     clk.Now(),
		UpdatedAt:     clk.Now(),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	svc := rsvp.NewService(
		responses,
		events,
		cache,
		eventsettings.NewProvider(events, attendingLimit),
		rolesResolver,
		users,
		clk,
	)

	return &fixture{
		svc:       svc,
		responses: responses,
		roles:     rolesResolver,
		clk:       clk,
		eventID:   e.ID,
	}
}

func TestGetDefaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	rec, err := f.svc.Get(ctx, 0, 1)
	if err != nil {
		t.Fatalf("Get invalid event: %v", err)
	}
	if rec != (domain.ResponseRecord{}) {
		t.Fatalf("Get invalid event = %+v, want zero record", rec)
	}

	rec, err = f.svc.Get(ctx, f.eventID, -3)
	if err != nil {
		t.Fatalf("Get invalid user: %v", err)
	}
	if rec != (domain.ResponseRecord{}) {
		t.Fatalf("Get invalid user = %+v, want zero record", rec)
	}

	rec, err = f.svc.Get(ctx, f.eventID, 1)
	if err != nil {
		t.Fatalf("Get unknown pair: %v", err)
	}
	if rec.Status != domain.StatusNoStatus || rec.EventID != f.eventID || rec.UserID != 1 {
		t.Fatalf("Get unknown pair = %+v, want no_status default", rec)
	}
}

func TestSaveRejectsInvalidInputWithoutPersisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	cases := []struct {
		name    string
		eventID domain.EventID
		userID  domain.UserID
		status  domain.RSVPStatus
	}{
		{"zero event", 0, 1, domain.StatusAttending},
		{"zero user", f.eventID, 0, domain.StatusAttending},
		{"negative user", f.eventID, -1, domain.StatusAttending},
		{"unknown status", f.eventID, 1, domain.RSVPStatus("maybe")},
	}
	for _, tc := range cases {
		rec, err := f.svc.Save(ctx, tc.eventID, tc.userID, rsvp.SaveInput{Status: tc.status})
		if err != nil {
			t.Fatalf("%s: Save returned error %v", tc.name, err)
		}
		if rec.UserID != 0 || rec.Status != domain.StatusNoStatus {
			t.Fatalf("%s: Save = %+v, want rejected record", tc.name, rec)
		}
	}

	rows, err := f.responses.ListByEvent(ctx, f.eventID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected saves wrote %d rows, want 0", len(rows))
	}
}

func TestSaveAndGetRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	saved, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{
		Status:    domain.StatusAttending,
		Anonymous: true,
		Guests:    2,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("Save did not assign an ID")
	}
	if saved.Status != domain.StatusAttending || saved.Guests != 2 || !saved.Anonymous {
		t.Fatalf("Save = %+v", saved)
	}

	got, err := f.svc.Get(ctx, f.eventID, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != saved {
		t.Fatalf("Get = %+v, want %+v", got, saved)
	}
}

func TestGuestClamping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 2)

	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 9})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Guests != 2 {
		t.Fatalf("guests = %d, want clamp to event limit 2", rec.Guests)
	}

	rec, err = f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending, Guests: -4})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Guests != 0 {
		t.Fatalf("guests = %d, want negative clamped to 0", rec.Guests)
	}
}

func TestCapacityDowngradesToWaitingList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 1, 5)

	first, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending})
	if err != nil {
		t.Fatalf("Save user 1: %v", err)
	}
	if first.Status != domain.StatusAttending {
		t.Fatalf("user 1 status = %q, want attending", first.Status)
	}

	second, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 3})
	if err != nil {
		t.Fatalf("Save user 2: %v", err)
	}
	if second.Status != domain.StatusWaitingList {
		t.Fatalf("user 2 status = %q, want waiting_list", second.Status)
	}
	if second.Guests != 0 {
		t.Fatalf("user 2 guests = %d, want 0 on the waiting list", second.Guests)
	}
}

func TestGuestsCountTowardCapacity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 5, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 2}); err != nil {
		t.Fatalf("Save user 1: %v", err)
	}

	// 3 seats taken; user 2 plus 3 guests would need 4.
	rec, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 3})
	if err != nil {
		t.Fatalf("Save user 2: %v", err)
	}
	if rec.Status != domain.StatusWaitingList {
		t.Fatalf("user 2 status = %q, want waiting_list", rec.Status)
	}
}

func TestDirectWaitingListRequestDropsGuests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusWaitingList, Guests: 4})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Status != domain.StatusWaitingList || rec.Guests != 0 {
		t.Fatalf("Save = %+v, want waiting_list with 0 guests", rec)
	}
}

func TestAttendingUpdateAtCapacityKeepsPreviousGuests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 2, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Event is full (1 member + 1 guest). Raising the guest count would
	// overshoot, so the previous count is kept; the update itself proceeds.
	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Anonymous: true, Guests: 4})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if rec.Status != domain.StatusAttending {
		t.Fatalf("status = %q, want attending", rec.Status)
	}
	if rec.Guests != 1 {
		t.Fatalf("guests = %d, want previous count 1", rec.Guests)
	}
	if !rec.Anonymous {
		t.Fatalf("anonymity change did not proceed")
	}
}

func TestAttendingUpdateNeverBlocksItself(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 1, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The event is at capacity, but the sole attendee re-saving must not be
	// pushed onto its own waiting list.
	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending})
	if err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if rec.Status != domain.StatusAttending {
		t.Fatalf("status = %q, want attending", rec.Status)
	}
}

func TestNoStatusRemovesRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusNoStatus})
	if err != nil {
		t.Fatalf("Save no_status: %v", err)
	}
	if rec.Status != domain.StatusNoStatus || rec.ID != "" {
		t.Fatalf("Save no_status = %+v", rec)
	}

	if _, err := f.responses.Find(ctx, f.eventID, 1); !errors.Is(err, responserepoport.ErrNotFound) {
		t.Fatalf("row still present after no_status: err=%v", err)
	}

	// Clearing an absent response writes nothing.
	if _, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusNoStatus}); err != nil {
		t.Fatalf("Save no_status absent: %v", err)
	}
	rows, err := f.responses.ListByEvent(ctx, f.eventID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("no_status on absent row left %d rows", len(rows))
	}
}

func TestAnonymousDeclineLeavesNoTrace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusNotAttending, Anonymous: true})
	if err != nil {
		t.Fatalf("Save anonymous decline: %v", err)
	}
	if rec.Status != domain.StatusNoStatus {
		t.Fatalf("status = %q, want no_status", rec.Status)
	}

	got, err := f.svc.Get(ctx, f.eventID, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.StatusNoStatus {
		t.Fatalf("Get after anonymous decline = %+v, want no_status default", got)
	}

	// A named decline, by contrast, keeps its row.
	named, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusNotAttending})
	if err != nil {
		t.Fatalf("Save named decline: %v", err)
	}
	if named.Status != domain.StatusNotAttending || named.ID == "" {
		t.Fatalf("named decline = %+v", named)
	}
}

func TestWaitlistPromotionIsFIFO(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 1, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 1: %v", err)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending, Anonymous: true}); err != nil {
		t.Fatalf("Save user 2: %v", err)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 3, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 3: %v", err)
	}

	// Seat frees up; the longest-waiting user (2) gets it, keeping anonymity.
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusNotAttending}); err != nil {
		t.Fatalf("Save decline: %v", err)
	}

	two, err := f.svc.Get(ctx, f.eventID, 2)
	if err != nil {
		t.Fatalf("Get user 2: %v", err)
	}
	if two.Status != domain.StatusAttending {
		t.Fatalf("user 2 status = %q, want attending", two.Status)
	}
	if !two.Anonymous {
		t.Fatalf("promotion dropped the anonymous flag")
	}

	three, err := f.svc.Get(ctx, f.eventID, 3)
	if err != nil {
		t.Fatalf("Get user 3: %v", err)
	}
	if three.Status != domain.StatusWaitingList {
		t.Fatalf("user 3 status = %q, want still waiting_list", three.Status)
	}
}

func TestWaitlistDrainFillsAllFreedSeats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 3, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 2}); err != nil {
		t.Fatalf("Save user 1: %v", err)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 2: %v", err)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 3, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 3: %v", err)
	}

	// Dropping both guests frees two seats at once.
	f.clk.Advance(time.Minute)
	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 0}); err != nil {
		t.Fatalf("Save guest drop: %v", err)
	}

	agg, err := f.svc.Responses(ctx, f.eventID)
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}
	if got := agg.Attending.Count; got != 3 {
		t.Fatalf("attending count = %d, want 3", got)
	}
	if got := len(agg.WaitingList.Responses); got != 0 {
		t.Fatalf("waiting list has %d entries, want 0", got)
	}
}

func TestCheckWaitingListReportsPromotions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 3, 5)

	if n, err := f.svc.CheckWaitingList(ctx, f.eventID); err != nil || n != 0 {
		t.Fatalf("CheckWaitingList empty = (%d, %v), want (0, nil)", n, err)
	}
	if n, err := f.svc.CheckWaitingList(ctx, 0); err != nil || n != 0 {
		t.Fatalf("CheckWaitingList invalid event = (%d, %v), want (0, nil)", n, err)
	}

	// Seed waitlisted rows directly so no save has drained them yet.
	for i, userID := range []domain.UserID{1, 2} {
		if _, err := f.responses.Upsert(ctx, responserepoport.Response{
			EventID:   f.eventID,
			UserID:    userID,
			Status:    domain.StatusWaitingList,
			UpdatedAt: f.clk.Now().Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("Upsert user %d: %v", userID, err)
		}
	}

	// The seeding bypassed cache invalidation; expire the aggregate cached by
	// the first call.
	f.clk.Advance(rsvp.DefaultCacheTTL + time.Second)

	n, err := f.svc.CheckWaitingList(ctx, f.eventID)
	if err != nil {
		t.Fatalf("CheckWaitingList: %v", err)
	}
	if n != 2 {
		t.Fatalf("promoted = %d, want 2", n)
	}
	for _, userID := range []domain.UserID{1, 2} {
		rec, err := f.svc.Get(ctx, f.eventID, userID)
		if err != nil {
			t.Fatalf("Get user %d: %v", userID, err)
		}
		if rec.Status != domain.StatusAttending {
			t.Fatalf("user %d status = %q, want attending", userID, rec.Status)
		}
	}
}

func TestAggregateGroupsAndCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending, Guests: 2}); err != nil {
		t.Fatalf("Save user 1: %v", err)
	}
	if _, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 2: %v", err)
	}
	if _, err := f.svc.Save(ctx, f.eventID, 3, rsvp.SaveInput{Status: domain.StatusNotAttending}); err != nil {
		t.Fatalf("Save user 3: %v", err)
	}

	agg, err := f.svc.Responses(ctx, f.eventID)
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}

	// Counts include guests; members 1+2 plus 2 guests attend.
	if got := agg.Attending.Count; got != 4 {
		t.Fatalf("attending count = %d, want 4", got)
	}
	if got := len(agg.Attending.Responses); got != 2 {
		t.Fatalf("attending members = %d, want 2", got)
	}
	if got := agg.NotAttending.Count; got != 1 {
		t.Fatalf("not_attending count = %d, want 1", got)
	}
	if got := agg.All.Count; got != 5 {
		t.Fatalf("all count = %d, want 5", got)
	}
	if got := len(agg.All.Responses); got != 3 {
		t.Fatalf("all members = %d, want 3", got)
	}
	if got := agg.WaitingList.Count; got != 0 {
		t.Fatalf("waiting_list count = %d, want 0", got)
	}

	view := agg.Attending.Responses[0]
	if view.Name == "" || view.ProfileURL == "" {
		t.Fatalf("view missing directory data: %+v", view)
	}
}

func TestAggregateOrdersByRolePrecedence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	f.roles.Assign(2, "Organizer")
	f.roles.Assign(3, "Assistant Organizer")

	for _, userID := range []domain.UserID{1, 2, 3} {
		if _, err := f.svc.Save(ctx, f.eventID, userID, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
			t.Fatalf("Save user %d: %v", userID, err)
		}
		f.clk.Advance(time.Second)
	}

	agg, err := f.svc.Responses(ctx, f.eventID)
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}

	got := make([]domain.UserID, 0, len(agg.Attending.Responses))
	for _, v := range agg.Attending.Responses {
		got = append(got, v.UserID)
	}
	want := []domain.UserID{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attending order = %v, want %v", got, want)
		}
	}
}

func TestAggregateForUnknownEventIsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	for _, eventID := range []domain.EventID{0, f.eventID + 99} {
		agg, err := f.svc.Responses(ctx, eventID)
		if err != nil {
			t.Fatalf("Responses(%d): %v", eventID, err)
		}
		if len(agg.All.Responses) != 0 || agg.All.Count != 0 {
			t.Fatalf("Responses(%d) = %+v, want empty", eventID, agg)
		}
	}
}

func TestSaveInvalidatesCachedAggregate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Prime the cache.
	if _, err := f.svc.Responses(ctx, f.eventID); err != nil {
		t.Fatalf("Responses: %v", err)
	}

	if _, err := f.svc.Save(ctx, f.eventID, 2, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save user 2: %v", err)
	}

	agg, err := f.svc.Responses(ctx, f.eventID)
	if err != nil {
		t.Fatalf("Responses after save: %v", err)
	}
	if got := agg.Attending.Count; got != 2 {
		t.Fatalf("attending count = %d, want cache refreshed to 2", got)
	}
}

func TestResponsesDropRowsForUnknownUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, 10, 5)

	if _, err := f.svc.Save(ctx, f.eventID, 1, rsvp.SaveInput{Status: domain.StatusAttending}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// User 99 is not in the directory; its row must not surface.
	if _, err := f.responses.Upsert(ctx, responserepoport.Response{
		EventID:   f.eventID,
		UserID:    99,
		Status:    domain.StatusAttending,
		UpdatedAt: f.clk.Now(),
	}); err != nil {
		t.Fatalf("Upsert stray row: %v", err)
	}

	// The direct Upsert bypasses cache invalidation; expire the cached
	// aggregate so the next read rebuilds from the repository.
	f.clk.Advance(rsvp.DefaultCacheTTL + time.Second)

	agg, err := f.svc.Responses(ctx, f.eventID)
	if err != nil {
		t.Fatalf("Responses: %v", err)
	}
	if got := len(agg.Attending.Responses); got != 1 {
		t.Fatalf("attending members = %d, want 1", got)
	}
	if got := agg.Attending.Responses[0].UserID; got != 1 {
		t.Fatalf("attending member = %d, want user 1", got)
	}
}
