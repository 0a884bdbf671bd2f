package httpapi

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/meetstack/event-rsvp-api/internal/app/events"
	"github.com/meetstack/event-rsvp-api/internal/app/rsvp"
	"github.com/meetstack/event-rsvp-api/internal/domain"
	"github.com/meetstack/event-rsvp-api/internal/ports/out/roles"
)

// anonymousName replaces the display name of masked responses.
const anonymousName = "Anonymous"

// Server is the HTTP adapter over the event and RSVP services.
type Server struct {
	Events *events.Service
	RSVPs  *rsvp.Service
	Roles  roles.Resolver
	Log    *zap.Logger
}

func NewServer(eventsSvc *events.Service, rsvpSvc *rsvp.Service, rolesResolver roles.Resolver, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Events: eventsSvc,
		RSVPs:  rsvpSvc,
		Roles:  rolesResolver,
		Log:    log,
	}
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	in := events.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if req.MaxGuestLimit != nil {
		in.MaxGuestLimit = *req.MaxGuestLimit
	}
	if req.Online != nil {
		in.Online = *req.Online
	}

	e, err := s.Events.CreateEvent(r.Context(), in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(e))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	e, err := s.Events.GetEvent(r.Context(), eventID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}

	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	e, err := s.Events.UpdateEvent(r.Context(), eventID, req.toInput())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

func (s *Server) handleGetMyRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := s.eventAndCaller(w, r)
	if !ok {
		return
	}

	rec, err := s.RSVPs.Get(r.Context(), eventID, userID)
	if err != nil {
		s.Log.Error("get rsvp", zap.Error(err))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSaveMyRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := s.eventAndCaller(w, r)
	if !ok {
		return
	}

	var req saveRSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	status := domain.RSVPStatus(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status", map[string]any{
			"status": "must be one of attending, not_attending, waiting_list, no_status",
		})
		return
	}
	if req.Guests < 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid guests", map[string]any{
			"guests": "must be >= 0",
		})
		return
	}

	rec, err := s.RSVPs.Save(r.Context(), eventID, userID, rsvp.SaveInput{
		Status:    status,
		Anonymous: req.Anonymous,
		Guests:    req.Guests,
	})
	if err != nil {
		s.Log.Error("save rsvp", zap.Error(err))
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID, userID, ok := s.eventAndCaller(w, r)
	if !ok {
		return
	}

	agg, err := s.RSVPs.Responses(r.Context(), eventID)
	if err != nil {
		s.Log.Error("list rsvps", zap.Error(err))
		writeAppError(w, err)
		return
	}

	privileged, err := s.callerIsPrivileged(r, userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !privileged {
		agg = maskAnonymous(agg)
	}

	writeJSON(w, http.StatusOK, agg)
}

// callerIsPrivileged reports whether the caller holds one of the configured
// leadership roles; only those viewers may see anonymous identities.
func (s *Server) callerIsPrivileged(r *http.Request, userID domain.UserID) (bool, error) {
	role, err := s.Roles.RoleOf(r.Context(), userID)
	if err != nil {
		return false, err
	}
	ordered, err := s.Roles.RolesOrdered(r.Context())
	if err != nil {
		return false, err
	}
	return slices.Contains(ordered, role), nil
}

// maskAnonymous hides the identity of anonymous responses from
// non-privileged viewers.
func maskAnonymous(agg domain.Aggregate) domain.Aggregate {
	agg.All = maskGroup(agg.All)
	agg.Attending = maskGroup(agg.Attending)
	agg.NotAttending = maskGroup(agg.NotAttending)
	agg.WaitingList = maskGroup(agg.WaitingList)
	return agg
}

func maskGroup(g domain.ResponseGroup) domain.ResponseGroup {
	masked := make([]domain.AttendeeView, len(g.Responses))
	for i, v := range g.Responses {
		if v.Anonymous {
			v.UserID = 0
			v.Name = anonymousName
			v.AvatarURL = ""
			v.ProfileURL = ""
		}
		masked[i] = v
	}
	g.Responses = masked
	return g
}

// eventAndCaller resolves the event path parameter, verifies the event
// exists, and extracts the authenticated caller.
func (s *Server) eventAndCaller(w http.ResponseWriter, r *http.Request) (domain.EventID, domain.UserID, bool) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return 0, 0, false
	}
	if _, err := s.Events.GetEvent(r.Context(), eventID); err != nil {
		writeAppError(w, err)
		return 0, 0, false
	}
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
		return 0, 0, false
	}
	return eventID, userID, true
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (domain.EventID, bool) {
	raw := chi.URLParam(r, "eventID")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		writeError(w, http.StatusNotFound, "EVENT_NOT_FOUND", "event not found", nil)
		return 0, false
	}
	return domain.EventID(n), true
}
