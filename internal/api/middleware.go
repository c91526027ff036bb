// middleware.go

// Bearer authentication, role gating, and rate limiting middleware.
package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ddanglyx/finalweb/internal/ratelimit"
)

// contextKey is unexported to prevent collisions with other packages using the same context.
type contextKey string

const subjectKey contextKey = "subject"

// SubjectFromContext retrieves the authenticated subject id from context.
// Returns empty string and false if RequireAuth hasn't run.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectKey).(string)
	return id, ok
}

// bearerPattern matches "Bearer <token>" with a case-insensitive scheme and
// any run of whitespace before the token.
var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// RequireAuth extracts and verifies the Authorization bearer token.
// Injects the verified subject id into context on success; returns 401 on
// a missing/malformed header or a token the verifier rejects.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
		if m == nil {
			logWarn(r, "require auth failed", "reason", "missing_bearer_header")
			Unauthorized(w, r, "Missing Authorization: Bearer <token>")
			return
		}

		subject, err := h.TV.Verify(r.Context(), m[1])
		if err != nil {
			logWarn(r, "token verification failed", "error", err)
			Unauthorized(w, r, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveRole looks up the subject's role.
// A missing profile row is not an error -- sign-up creates the auth identity
// before the profile document, so absent (or blank) resolves to "user".
func (h *Handler) resolveRole(ctx context.Context, subject string) (string, error) {
	role, err := h.DB.GetUserRole(ctx, subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "user", nil
		}
		return "", err
	}
	if role == "" {
		return "user", nil
	}
	return role, nil
}

// RequireAdmin gates a route on the resolved role being admin.
// Must run after RequireAuth. Returns 403 for everyone else.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromContext(r.Context())
		if !ok {
			logError(r, "require admin called without subject in context")
			InternalServerError(w, r, errors.New("missing auth context"))
			return
		}

		role, err := h.resolveRole(r.Context(), subject)
		if err != nil {
			InternalServerError(w, r, err)
			return
		}
		if role != "admin" {
			logWarn(r, "admin route denied", "subject", subject, "role", role)
			Forbidden(w, "Admin only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit records the request against the subject's quota.
// Must run after RequireAuth. A full bucket returns 429; a counter-store
// failure is an internal fault, never a quota rejection.
func (h *Handler) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromContext(r.Context())
		if !ok {
			logError(r, "rate limit called without subject in context")
			InternalServerError(w, r, errors.New("missing auth context"))
			return
		}

		if err := h.RL.Allow(r.Context(), subject, time.Now()); err != nil {
			if errors.Is(err, ratelimit.ErrLimitExceeded) {
				logInfo(r, "request rate limited", "subject", subject)
				TooManyRequests(w)
				return
			}
			InternalServerError(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Recoverer is the centralized fault boundary: any handler panic is logged
// with full context server-side while the client sees only the generic 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logError(r, "handler panicked", "panic", rec)
				respondError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
