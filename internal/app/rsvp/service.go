package rsvp

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/aggcache"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/clock"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/roles"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/settings"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/userdir"
)

// DefaultCacheTTL bounds how long a computed aggregate may be served before
// it is rebuilt from the repository.
const DefaultCacheTTL = 15 * time.Minute

// Service is the response admission engine. It decides the final persisted
// status and guest count for each save, enforces the attending capacity, and
// promotes waitlisted responses as seats free up.
//
// Invalid identifiers and unknown statuses are not errors: such calls return
// zero/default records without touching storage, so transport layers can
// treat absence uniformly. Errors are reserved for collaborator failures.
//
// The engine holds no locks of its own. Two saves racing the same capacity
// check can transiently overshoot the limit; serialization, if wanted, must
// come from the storage layer.
type Service struct {
	responses responserepo.Repository
	events    eventrepo.Repository
	cache     aggcache.Cache
	settings  settings.Provider
	roles     roles.Resolver
	users     userdir.Directory
	clk       clock.Clock

	cacheTTL time.Duration
}

func NewService(
	responses responserepo.Repository,
	events eventrepo.Repository,
	cache aggcache.Cache,
	stg settings.Provider,
	rolesResolver roles.Resolver,
	users userdir.Directory,
	clk clock.Clock,
) *Service {
	return &Service{
		responses: responses,
		events:    events,
		cache:     cache,
		settings:  stg,
		roles:     rolesResolver,
		users:     users,
		clk:       clk,
		cacheTTL:  DefaultCacheTTL,
	}
}

// SetCacheTTL overrides how long aggregates stay cached.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Get returns the stored response for (event, user).
//
// Invalid identifiers yield the zero record ("not applicable"); a valid pair
// with no stored row yields a default record with StatusNoStatus.
func (s *Service) Get(ctx context.Context, eventID domain.EventID, userID domain.UserID) (domain.ResponseRecord, error) {
	if eventID < 1 || userID < 1 {
		return domain.ResponseRecord{}, nil
	}

	row, err := s.responses.Find(ctx, eventID, userID)
	if errors.Is(err, responserepo.ErrNotFound) {
		return domain.ResponseRecord{
			EventID: eventID,
			UserID:  userID,
			Status:  domain.StatusNoStatus,
		}, nil
	}
	if err != nil {
		return domain.ResponseRecord{}, err
	}

	return recordFromRow(row), nil
}

// Save applies the admission algorithm to the caller's requested response and
// persists the outcome.
//
// Requested guests are clamped to the event's guest limit. When the attending
// capacity is reached, an update by an already-attending user keeps its
// previous guest count while the status change proceeds, whereas a new
// attending or waiting_list request is downgraded to waiting_list. A
// waiting_list response always carries zero guests.
//
// StatusNoStatus, or an anonymous not_attending, removes the stored row; the
// returned record reports StatusNoStatus.
func (s *Service) Save(ctx context.Context, eventID domain.EventID, userID domain.UserID, in SaveInput) (domain.ResponseRecord, error) {
	rec, limitReached, err := s.apply(ctx, eventID, userID, in)
	if err != nil {
		return rec, err
	}
	if rec.UserID == 0 {
		// Rejected input; nothing was written.
		return rec, nil
	}
	if !limitReached {
		if _, err := s.CheckWaitingList(ctx, eventID); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// apply runs one admission decision without draining the waiting list, so the
// drain loop can reuse it without re-entering itself.
func (s *Service) apply(ctx context.Context, eventID domain.EventID, userID domain.UserID, in SaveInput) (domain.ResponseRecord, bool, error) {
	rejected := domain.ResponseRecord{Status: domain.StatusNoStatus}

	if eventID < 1 || userID < 1 {
		return rejected, false, nil
	}
	if !in.Status.Valid() {
		return rejected, false, nil
	}

	maxGuests, err := s.settings.MaxGuestLimit(ctx, eventID)
	if err != nil {
		return rejected, false, err
	}
	guests := in.Guests
	if guests < 0 {
		guests = 0
	}
	if guests > maxGuests {
		guests = maxGuests
	}

	current, err := s.Get(ctx, eventID, userID)
	if err != nil {
		return rejected, false, err
	}

	limitReached, err := s.attendingLimitReached(ctx, eventID, current, guests)
	if err != nil {
		return rejected, false, err
	}

	status := in.Status

	// An attending user updating at capacity keeps its previous guest count;
	// the status change itself still proceeds.
	if status == domain.StatusAttending && limitReached {
		guests = current.Guests
	}

	// A user not already attending is held back once capacity is reached.
	if (status == domain.StatusAttending || status == domain.StatusWaitingList) &&
		current.Status != domain.StatusAttending &&
		limitReached {
		status = domain.StatusWaitingList
	}

	if status == domain.StatusWaitingList {
		guests = 0
	}

	rec := domain.ResponseRecord{
		ID:        current.ID,
		EventID:   eventID,
		UserID:    userID,
		Timestamp: s.clk.Now().UTC(),
		Status:    status,
		Guests:    guests,
		Anonymous: in.Anonymous,
	}

	if status == domain.StatusNoStatus || (status == domain.StatusNotAttending && in.Anonymous) {
		// An anonymous decline leaves no trace; the aggregate reports
		// no_status for such users.
		if current.ID != "" {
			if err := s.responses.Delete(ctx, current.ID); err != nil && !errors.Is(err, responserepo.ErrNotFound) {
				return rejected, false, err
			}
		}
		rec.ID = ""
		rec.Status = domain.StatusNoStatus
	} else {
		stored, err := s.responses.Upsert(ctx, rowFromRecord(rec))
		if err != nil {
			return rejected, false, err
		}
		rec.ID = stored.ID
	}

	// The cache is advisory; a failed invalidation must not fail the save.
	_ = s.cache.Invalidate(ctx, eventID)

	return rec, limitReached, nil
}

// CheckWaitingList promotes waitlisted responses into free attending seats,
// longest-waiting first, and returns the number promoted.
//
// The drain is iterative: every promotion invalidates the cached aggregate,
// so each pass observes up-to-date counts.
func (s *Service) CheckWaitingList(ctx context.Context, eventID domain.EventID) (int, error) {
	if eventID < 1 {
		return 0, nil
	}

	limit, err := s.settings.MaxAttendingLimit(ctx)
	if err != nil {
		return 0, err
	}

	agg, err := s.Responses(ctx, eventID)
	if err != nil {
		return 0, err
	}

	promoted := 0
	maxPasses := len(agg.WaitingList.Responses)

	for promoted < maxPasses {
		if agg.Attending.Count >= limit || len(agg.WaitingList.Responses) == 0 {
			break
		}

		next := earliestResponse(agg.WaitingList.Responses)

		// Guests are intentionally dropped on promotion, consistent with the
		// zero-guest waiting-list policy.
		if _, _, err := s.apply(ctx, eventID, next.UserID, SaveInput{
			Status:    domain.StatusAttending,
			Anonymous: next.Anonymous,
		}); err != nil {
			return promoted, err
		}
		promoted++

		agg, err = s.Responses(ctx, eventID)
		if err != nil {
			return promoted, err
		}
	}

	return promoted, nil
}

// attendingLimitReached reports whether persisting a response with the given
// additional guests would exceed the attending capacity. When the user is
// already attending the call evaluates a change, not a new admission, so the
// user and its existing guests are treated as already counted.
func (s *Service) attendingLimitReached(ctx context.Context, eventID domain.EventID, current domain.ResponseRecord, additionalGuests int) (bool, error) {
	// Non-events never partition responses, so they never hit the cap.
	isEvent, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return false, err
	}
	if !isEvent {
		return false, nil
	}

	agg, err := s.Responses(ctx, eventID)
	if err != nil {
		return false, err
	}
	limit, err := s.settings.MaxAttendingLimit(ctx)
	if err != nil {
		return false, err
	}

	userCount := 1
	if current.Status == domain.StatusAttending {
		additionalGuests -= current.Guests
		userCount = 0
	}

	return agg.Attending.Count+userCount+additionalGuests > limit, nil
}

// Responses returns the aggregated response view for an event, grouped by
// status. Results are cached for a bounded TTL; any cache failure degrades to
// a repository read.
func (s *Service) Responses(ctx context.Context, eventID domain.EventID) (domain.Aggregate, error) {
	if agg, ok, err := s.cache.Get(ctx, eventID); err == nil && ok {
		return agg, nil
	}

	empty := domain.Aggregate{All: domain.ResponseGroup{Responses: []domain.AttendeeView{}}}

	if eventID < 1 {
		return empty, nil
	}
	isEvent, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return empty, err
	}
	if !isEvent {
		return empty, nil
	}

	rows, err := s.responses.ListByEvent(ctx, eventID)
	if err != nil {
		return empty, err
	}

	views := make([]domain.AttendeeView, 0, len(rows))
	allGuests := 0
	for _, row := range rows {
		if row.UserID < 1 || !isGroupStatus(row.Status) {
			continue
		}

		prof, err := s.users.Lookup(ctx, row.UserID)
		if errors.Is(err, userdir.ErrNotFound) {
			// Responses from users the directory no longer knows are dropped.
			continue
		}
		if err != nil {
			return empty, err
		}

		role, err := s.roles.RoleOf(ctx, row.UserID)
		if err != nil {
			return empty, err
		}

		allGuests += row.Guests
		views = append(views, domain.AttendeeView{
			UserID:     row.UserID,
			Name:       prof.DisplayName,
			AvatarURL:  prof.AvatarURL,
			ProfileURL: prof.ProfileURL,
			Role:       role,
			Timestamp:  row.UpdatedAt,
			Status:     row.Status,
			Guests:     row.Guests,
			Anonymous:  row.Anonymous,
		})
	}

	if err := s.sortByRole(ctx, views); err != nil {
		return empty, err
	}

	agg := domain.Aggregate{
		All:          domain.ResponseGroup{Responses: views, Count: len(views) + allGuests},
		Attending:    groupByStatus(views, domain.StatusAttending),
		NotAttending: groupByStatus(views, domain.StatusNotAttending),
		WaitingList:  groupByStatus(views, domain.StatusWaitingList),
	}

	_ = s.cache.Set(ctx, eventID, agg, s.cacheTTL)

	return agg, nil
}

// sortByRole orders views by role precedence, highest first, with users
// outside the configured roles sorting last. The sort is stable so equal
// roles keep repository order.
func (s *Service) sortByRole(ctx context.Context, views []domain.AttendeeView) error {
	ordered, err := s.roles.RolesOrdered(ctx)
	if err != nil {
		return err
	}

	rank := make(map[string]int, len(ordered)+1)
	for i, r := range ordered {
		rank[r] = i
	}
	rank[roles.DefaultRole] = len(ordered)

	indexOf := func(role string) int {
		if i, ok := rank[role]; ok {
			return i
		}
		return len(ordered)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return indexOf(views[i].Role) < indexOf(views[j].Role)
	})
	return nil
}

func groupByStatus(views []domain.AttendeeView, status domain.RSVPStatus) domain.ResponseGroup {
	members := make([]domain.AttendeeView, 0)
	guests := 0
	for _, v := range views {
		if v.Status != status {
			continue
		}
		members = append(members, v)
		guests += v.Guests
	}
	return domain.ResponseGroup{Responses: members, Count: len(members) + guests}
}

func earliestResponse(views []domain.AttendeeView) domain.AttendeeView {
	best := views[0]
	for _, v := range views[1:] {
		if v.Timestamp.Before(best.Timestamp) {
			best = v
		}
	}
	return best
}

func isGroupStatus(status domain.RSVPStatus) bool {
	for _, s := range domain.GroupStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func recordFromRow(row responserepo.Response) domain.ResponseRecord {
	return domain.ResponseRecord{
		ID:        row.ID,
		EventID:   row.EventID,
		UserID:    row.UserID,
		Timestamp: row.UpdatedAt,
		Status:    row.Status,
		Guests:    row.Guests,
		Anonymous: row.Anonymous,
	}
}

func rowFromRecord(rec domain.ResponseRecord) responserepo.Response {
	return responserepo.Response{
		ID:        rec.ID,
		EventID:   rec.EventID,
		UserID:    rec.UserID,
		Status:    rec.Status,
		Guests:    rec.Guests,
		Anonymous: rec.Anonymous,
		UpdatedAt: rec.Timestamp,
	}
}
