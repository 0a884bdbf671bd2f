package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meetstack/event-rsvp-api/internal/domain"
)

// NewAuthMiddleware enforces Authorization: Bearer <JWT> (HS256) on every
// endpoint except the health check. The `sub` claim is the numeric user ID.
//
// On success it stores the authenticated user ID in request context.
func NewAuthMiddleware(secret string) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks stay unauthenticated so probes work without tokens.
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

			var claims jwt.RegisteredClaims
			if _, err := jwt.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil || userID < 1 {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid subject", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), domain.UserID(userID))))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit numeric user ID via X-Debug-User and falls back to
// defaultUserID when the header is absent. Do NOT use this in production
// deployments.
func NewDevAuthMiddleware(defaultUserID domain.UserID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			userID := defaultUserID
			if v := r.Header.Get("X-Debug-User"); v != "" {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil || n < 1 {
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid X-Debug-User", nil)
					return
				}
				userID = domain.UserID(n)
			}
			if userID < 1 {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}
