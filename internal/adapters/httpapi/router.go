package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterOptions configures cross-cutting router behavior.
type RouterOptions struct {
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter constructs the API HTTP router.
//
// This is intentionally a thin adapter: it wires routes/middleware and
// delegates to the Server handlers.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.Log))

	// Auth middleware itself lets /healthz through unauthenticated.
	if opts.AuthMiddleware != nil {
		r.Use(opts.AuthMiddleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", s.handleCreateEvent)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", s.handleGetEvent)
			r.Patch("/", s.handleUpdateEvent)
			r.Get("/rsvps", s.handleListRSVPs)
			r.Get("/rsvp", s.handleGetMyRSVP)
			r.Put("/rsvp", s.handleSaveMyRSVP)
		})
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
