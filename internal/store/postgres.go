// Package store handles all database and counter-store interactions.
//
// postgres.go -- pgxpool connection setup and queries.
// Creates a connection pool at startup, shared across all handlers.
// All queries use parameterized statements (no string concatenation).
package store

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The store used by the program to connect with the Postgres db.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a verified connection pool to PostgreSQL and
// returns a ready-to-use store. Call once at startup from main.go; the
// returned store is safe for concurrent use.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	// Create a pool w/ database url, return if err
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	// Ping db to make sure connection works
	err = pool.Ping(ctx)
	if err != nil {
		return nil, err
	}

	return &PostgresStore{pool}, nil
}

// Close shuts down the connection pool and releases all resources.
// Call via defer in main.go after creating the store.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateMessage inserts a new contact message owned by userID.
// The caller generates the UUID v7 id; created_at is assigned by the database
// so ordering is consistent across server instances.
func (s *PostgresStore) CreateMessage(ctx context.Context, id uuid.UUID, name, email, body string, attachmentURL *string, userID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contact_messages (id, name, email, message, attachment_url, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, email, body, attachmentURL, userID)
	return err
}

// GetMessage fetches a single message by id.
// Returns pgx.ErrNoRows if the id does not exist.
func (s *PostgresStore) GetMessage(ctx context.Context, id uuid.UUID) (*Message, error) {
	var m Message
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, message, attachment_url, user_id, created_at
		 FROM contact_messages WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.AttachmentURL, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessagesByUser fetches the given user's messages, newest first.
// id is the tie-break for rows sharing a created_at timestamp.
func (s *PostgresStore) ListMessagesByUser(ctx context.Context, userID string, limit int) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, message, attachment_url, user_id, created_at
		 FROM contact_messages
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListMessages fetches messages across all users, newest first.
// Admin moderation view only.
func (s *PostgresStore) ListMessages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, message, attachment_url, user_id, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// scanMessages drains a message result set.
func scanMessages(rows pgx.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &m.AttachmentURL, &m.UserID, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// UpdateMessageBody overwrites the message body. No other column is mutable
// after creation. Returns pgx.ErrNoRows if the id does not exist.
func (s *PostgresStore) UpdateMessageBody(ctx context.Context, id uuid.UUID, body string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE contact_messages SET message = $2 WHERE id = $1", id, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteMessage removes a message row entirely.
// Returns pgx.ErrNoRows if the id does not exist.
func (s *PostgresStore) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM contact_messages WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetUserRole fetches the role column for the given provider uid.
// Returns pgx.ErrNoRows if no profile row exists -- the caller decides what
// a missing profile means (the API treats it as role "user").
func (s *PostgresStore) GetUserRole(ctx context.Context, userID string) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx,
		"SELECT role FROM users WHERE id = $1", userID).Scan(&role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// SearchGuitarsByName fetches catalog entries whose name matches exactly
// (case-sensitive, as stored). An empty result is not an error.
func (s *PostgresStore) SearchGuitarsByName(ctx context.Context, name string, limit int) ([]Guitar, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, type, description FROM guitars
		 WHERE name = $1 LIMIT $2`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guitars []Guitar
	for rows.Next() {
		var g Guitar
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.Description); err != nil {
			return nil, err
		}
		guitars = append(guitars, g)
	}
	return guitars, rows.Err()
}
