// handler.go -- dependency wiring for all API HTTP handlers.
package api

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/ddanglyx/finalweb/internal/cache"
	"github.com/ddanglyx/finalweb/internal/store"
)

// Store defines database operations needed by API handlers.
// Satisfied by *store.PostgresStore — defined here (at consumer) per Go convention.
type Store interface {
	// CreateMessage inserts a new contact message owned by userID.
	CreateMessage(ctx context.Context, id uuid.UUID, name, email, body string, attachmentURL *string, userID string) error

	// GetMessage fetches one message by id. Returns pgx.ErrNoRows if absent.
	GetMessage(ctx context.Context, id uuid.UUID) (*store.Message, error)

	// ListMessagesByUser fetches the user's own messages, newest first.
	ListMessagesByUser(ctx context.Context, userID string, limit int) ([]store.Message, error)

	// ListMessages fetches messages across all users, newest first. Admin only.
	ListMessages(ctx context.Context, limit int) ([]store.Message, error)

	// UpdateMessageBody overwrites the message body, the only mutable field.
	// Returns pgx.ErrNoRows if absent.
	UpdateMessageBody(ctx context.Context, id uuid.UUID, body string) error

	// DeleteMessage removes the row. Returns pgx.ErrNoRows if absent.
	DeleteMessage(ctx context.Context, id uuid.UUID) error

	// GetUserRole fetches the role for a provider uid.
	// Returns pgx.ErrNoRows when no profile row exists.
	GetUserRole(ctx context.Context, userID string) (string, error)

	// SearchGuitarsByName fetches catalog entries with an exact name match.
	SearchGuitarsByName(ctx context.Context, name string, limit int) ([]store.Guitar, error)
}

// RateLimiter records one request against the subject's quota.
// Satisfied by *ratelimit.Limiter -- defined here per Go convention.
type RateLimiter interface {
	// Allow returns nil when within quota, ratelimit.ErrLimitExceeded when
	// the bucket is full, and any other error on store failure.
	Allow(ctx context.Context, subject string, now time.Time) error
}

// TokenVerifier checks a bearer credential with the identity provider.
// Satisfied by *JWTVerifier -- swap in a provider SDK client without
// touching the middleware.
type TokenVerifier interface {
	// Verify returns the subject id the token was issued to.
	Verify(ctx context.Context, token string) (string, error)
}

// Handler holds dependencies for all API HTTP handlers and middleware.
type Handler struct {
	DB    Store
	RL    RateLimiter
	TV    TokenVerifier
	Cache *cache.SearchCache
}
