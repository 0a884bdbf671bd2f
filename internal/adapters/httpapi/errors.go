package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meetstack/event-rsvp-api/internal/app/events"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// writeAppError maps an application error onto the envelope; anything not an
// *events.Error is an internal failure.
func writeAppError(w http.ResponseWriter, err error) {
	var ae *events.Error
	if errors.As(err, &ae) {
		writeError(w, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
