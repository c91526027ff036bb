// messages.go -- HTTP handlers for the /messages resource.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ddanglyx/finalweb/internal/store"
)

// messageItem is the JSON shape of one message in list responses.
// CreatedAt is Unix milliseconds, matching what the client renders.
type messageItem struct {
	ID            string  `json:"id"`
	Message       string  `json:"message"`
	AttachmentURL *string `json:"attachmentUrl"`
	CreatedAt     int64   `json:"createdAt"`
}

func toMessageItem(m store.Message) messageItem {
	return messageItem{
		ID:            m.ID.String(),
		Message:       m.Body,
		AttachmentURL: m.AttachmentURL,
		CreatedAt:     m.CreatedAt.UnixMilli(),
	}
}

// ListMessages handles GET /messages?limit=N — the caller's own messages,
// newest first. Never returns another subject's messages.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		InternalServerError(w, r, errors.New("missing auth context"))
		return
	}

	limit := clampLimit(r.URL.Query().Get("limit"))

	msgs, err := h.DB.ListMessagesByUser(r.Context(), subject, limit)
	if err != nil {
		logError(r, "failed to list messages", "error", err, "subject", subject)
		InternalServerError(w, r, err)
		return
	}

	items := make([]messageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageItem(m))
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CreateMessage handles POST /messages — validates and persists a new
// contact message owned by the verified subject.
// Returns 201 with the new id, 400 listing every violated constraint.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		InternalServerError(w, r, errors.New("missing auth context"))
		return
	}

	var in createMessageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logWarn(r, "failed to decode create message input", "error", err)
		BadRequest(w, r, "error decoding request body")
		return
	}

	if msg := validateCreateMessage(in); msg != "" {
		BadRequest(w, r, msg)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		InternalServerError(w, r, err)
		return
	}

	// Owner is always the verified subject; creation time is assigned by
	// the store. Neither is ever writable by the caller.
	if err := h.DB.CreateMessage(r.Context(), id, in.Name, in.Email, in.Message, in.AttachmentURL, subject); err != nil {
		logError(r, "failed to create message", "error", err)
		InternalServerError(w, r, err)
		return
	}

	logInfo(r, "new contact message", "subject", subject, "message_id", id)
	respondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// authorizeMessageWrite loads the message and checks the caller may mutate
// it: owner or admin. Writes the error response itself and returns false
// when the caller may not proceed. Existence is checked before permission,
// so an unknown id is 404 even for strangers.
func (h *Handler) authorizeMessageWrite(w http.ResponseWriter, r *http.Request, subject string, id uuid.UUID) bool {
	msg, err := h.DB.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			NotFound(w)
			return false
		}
		logError(r, "failed to fetch message", "error", err, "message_id", id)
		InternalServerError(w, r, err)
		return false
	}

	isOwner := msg.UserID != nil && *msg.UserID == subject
	if !isOwner {
		role, err := h.resolveRole(r.Context(), subject)
		if err != nil {
			InternalServerError(w, r, err)
			return false
		}
		if role != "admin" {
			logWarn(r, "message write denied", "subject", subject, "message_id", id)
			Forbidden(w, "Forbidden")
			return false
		}
	}
	return true
}

// UpdateMessage handles PATCH /messages/{id} — rewrites the message body.
// Only the owner or an admin may update; only the body field is mutable.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		InternalServerError(w, r, errors.New("missing auth context"))
		return
	}

	var in struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logWarn(r, "failed to decode update message input", "error", err)
		BadRequest(w, r, "error decoding request body")
		return
	}
	if msg := validateBody(in.Message); msg != "" {
		BadRequest(w, r, msg)
		return
	}

	// A non-UUID path segment can't name a stored message.
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		NotFound(w)
		return
	}

	if !h.authorizeMessageWrite(w, r, subject, id) {
		return
	}

	if err := h.DB.UpdateMessageBody(r.Context(), id, in.Message); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted between the ownership check and the write.
			NotFound(w)
			return
		}
		logError(r, "failed to update message", "error", err, "message_id", id)
		InternalServerError(w, r, err)
		return
	}

	logInfo(r, "message updated", "subject", subject, "message_id", id)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteMessage handles DELETE /messages/{id} — removes the record entirely.
// Same existence and authorization rules as update.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		InternalServerError(w, r, errors.New("missing auth context"))
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		NotFound(w)
		return
	}

	if !h.authorizeMessageWrite(w, r, subject, id) {
		return
	}

	if err := h.DB.DeleteMessage(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			NotFound(w)
			return
		}
		logError(r, "failed to delete message", "error", err, "message_id", id)
		InternalServerError(w, r, err)
		return
	}

	logInfo(r, "message deleted", "subject", subject, "message_id", id)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
