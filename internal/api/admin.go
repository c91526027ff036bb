// admin.go -- admin-only moderation handlers. Routed behind RequireAdmin.
package api

import (
	"net/http"

	"github.com/ddanglyx/finalweb/internal/store"
)

// adminMessageItem extends the list shape with submitter fields admins need
// for moderation.
type adminMessageItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Message       string  `json:"message"`
	AttachmentURL *string `json:"attachmentUrl"`
	UserID        *string `json:"userId"`
	CreatedAt     int64   `json:"createdAt"`
}

func toAdminMessageItem(m store.Message) adminMessageItem {
	return adminMessageItem{
		ID:            m.ID.String(),
		Name:          m.Name,
		Email:         m.Email,
		Message:       m.Body,
		AttachmentURL: m.AttachmentURL,
		UserID:        m.UserID,
		CreatedAt:     m.CreatedAt.UnixMilli(),
	}
}

// AdminListMessages handles GET /admin/messages?limit=N — recent messages
// across all users, newest first.
func (h *Handler) AdminListMessages(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"))

	msgs, err := h.DB.ListMessages(r.Context(), limit)
	if err != nil {
		logError(r, "failed to list all messages", "error", err)
		InternalServerError(w, r, err)
		return
	}

	items := make([]adminMessageItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toAdminMessageItem(m))
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}
