// guitars.go -- HTTP handler for the read-only guitar catalog search.
package api

import (
	"net/http"
	"strings"

	"github.com/ddanglyx/finalweb/internal/store"
)

// searchResultLimit caps how many catalog rows one search returns.
const searchResultLimit = 10

// guitarItem is the JSON shape of one catalog entry in search responses.
type guitarItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
}

func toGuitarItems(guitars []store.Guitar) []guitarItem {
	items := make([]guitarItem, 0, len(guitars))
	for _, g := range guitars {
		items = append(items, guitarItem{
			ID:          g.ID.String(),
			Name:        g.Name,
			Type:        g.Type,
			Description: g.Description,
		})
	}
	return items
}

// SearchGuitars handles GET /guitars/search?name=X — exact name match
// against the catalog, served from the bounded cache when possible.
// The response says whether it came from cache; a term with no matches is a
// 200 with an empty item list, and that emptiness is cached too.
func (h *Handler) SearchGuitars(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		BadRequest(w, r, "Missing name")
		return
	}

	if guitars, ok := h.Cache.Get(name); ok {
		respondJSON(w, http.StatusOK, map[string]any{
			"items":  toGuitarItems(guitars),
			"cached": true,
		})
		return
	}

	// Lookup is case-sensitive as stored; only the cache key is folded.
	guitars, err := h.DB.SearchGuitarsByName(r.Context(), name, searchResultLimit)
	if err != nil {
		logError(r, "guitar search failed", "error", err, "name", name)
		InternalServerError(w, r, err)
		return
	}

	h.Cache.Set(name, guitars)

	respondJSON(w, http.StatusOK, map[string]any{
		"items":  toGuitarItems(guitars),
		"cached": false,
	})
}
