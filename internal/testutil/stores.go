// stores.go
//
// Shared mock implementations of api.Store, api.RateLimiter, and
// api.TokenVerifier. Imported by test files across packages to avoid
// duplicate mock definitions.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ddanglyx/finalweb/internal/store"
)

// MockStore implements api.Store for tests.
//
// Always stateful -- Messages, Roles, and Guitars behave like a real store.
// Use *Err fields to inject errors for specific operations.
type MockStore struct {
	// Error injection -- zero value means no error
	CreateMessageErr error
	GetMessageErr    error
	ListErr          error
	UpdateErr        error
	DeleteErr        error
	RoleErr          error
	SearchErr        error

	Messages map[uuid.UUID]*store.Message // keyed by message id
	Roles    map[string]string            // keyed by provider uid
	Guitars  []store.Guitar

	// SearchCalls counts SearchGuitarsByName invocations, for cache tests.
	SearchCalls int

	mu sync.Mutex
}

// NewMockStore returns an empty MockStore ready for use.
func NewMockStore() *MockStore {
	return &MockStore{
		Messages: make(map[uuid.UUID]*store.Message),
		Roles:    make(map[string]string),
	}
}

func (m *MockStore) CreateMessage(_ context.Context, id uuid.UUID, name, email, body string, attachmentURL *string, userID string) error {
	if m.CreateMessageErr != nil {
		return m.CreateMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Messages == nil {
		m.Messages = make(map[uuid.UUID]*store.Message)
	}
	owner := userID
	m.Messages[id] = &store.Message{
		ID:            id,
		Name:          name,
		Email:         email,
		Body:          body,
		AttachmentURL: attachmentURL,
		UserID:        &owner,
		CreatedAt:     time.Now(),
	}
	return nil
}

func (m *MockStore) GetMessage(_ context.Context, id uuid.UUID) (*store.Message, error) {
	if m.GetMessageErr != nil {
		return nil, m.GetMessageErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return msg, nil
}

func (m *MockStore) ListMessagesByUser(_ context.Context, userID string, limit int) ([]store.Message, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var msgs []store.Message
	for _, msg := range m.Messages {
		if msg.UserID != nil && *msg.UserID == userID {
			msgs = append(msgs, *msg)
		}
	}
	sortNewestFirst(msgs)
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (m *MockStore) ListMessages(_ context.Context, limit int) ([]store.Message, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var msgs []store.Message
	for _, msg := range m.Messages {
		msgs = append(msgs, *msg)
	}
	sortNewestFirst(msgs)
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (m *MockStore) UpdateMessageBody(_ context.Context, id uuid.UUID, body string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[id]
	if !ok {
		return pgx.ErrNoRows
	}
	msg.Body = body
	return nil
}

func (m *MockStore) DeleteMessage(_ context.Context, id uuid.UUID) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Messages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.Messages, id)
	return nil
}

func (m *MockStore) GetUserRole(_ context.Context, userID string) (string, error) {
	if m.RoleErr != nil {
		return "", m.RoleErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.Roles[userID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return role, nil
}

func (m *MockStore) SearchGuitarsByName(_ context.Context, name string, limit int) ([]store.Guitar, error) {
	m.mu.Lock()
	m.SearchCalls++
	m.mu.Unlock()
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var matches []store.Guitar
	for _, g := range m.Guitars {
		if g.Name == name {
			matches = append(matches, g)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// sortNewestFirst orders messages by created_at descending, id descending as
// tie-break -- same ordering the real queries use.
func sortNewestFirst(msgs []store.Message) {
	for i := 1; i < len(msgs); i++ {
		for j := i; j > 0 && newer(msgs[j], msgs[j-1]); j-- {
			msgs[j], msgs[j-1] = msgs[j-1], msgs[j]
		}
	}
}

func newer(a, b store.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// MockLimiter implements api.RateLimiter for tests.
// Zero value allows everything; set AllowErr to reject.
type MockLimiter struct {
	AllowErr error

	mu    sync.Mutex
	Calls []string // subjects passed to Allow, in order
}

func (m *MockLimiter) Allow(_ context.Context, subject string, _ time.Time) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, subject)
	m.mu.Unlock()
	return m.AllowErr
}

// MockVerifier implements api.TokenVerifier for tests.
// Maps token strings to subjects; unknown tokens fail verification.
type MockVerifier struct {
	Subjects map[string]string // token -> subject
}

// NewMockVerifier returns a verifier accepting the given token/subject pairs.
func NewMockVerifier(pairs map[string]string) *MockVerifier {
	return &MockVerifier{Subjects: pairs}
}

func (m *MockVerifier) Verify(_ context.Context, token string) (string, error) {
	sub, ok := m.Subjects[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return sub, nil
}
