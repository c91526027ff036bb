// models.go -- Shared domain types for the store package.
// Used by Postgres (durable store) and the API handler interfaces.
package store

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents a row in the users table.
// ID is the external identity-provider uid -- a string, not a UUID, because
// the provider assigns it. Nullable columns are pointers; nil means SQL NULL.
type User struct {
	ID          string
	DisplayName *string
	Email       *string
	Role        string
	CreatedAt   time.Time
}

// Message represents a row in the contact_messages table.
// UserID is nil for anonymous submissions (the unauthenticated client writes
// directly to the store); the API always sets it to the verified subject.
// Once assigned, UserID is never changed -- only the message body is mutable.
type Message struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Body          string
	AttachmentURL *string
	UserID        *string
	CreatedAt     time.Time
}

// Guitar represents a row in the guitars catalog table.
// Read-only from this service's perspective; rows are seeded out of band.
type Guitar struct {
	ID          uuid.UUID
	Name        string
	Type        *string
	Description *string
}
