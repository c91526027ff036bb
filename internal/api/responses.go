// responses.go -- Package-wide HTTP response helpers.
//
// Every error body is {"error": <message>} -- the shape the client's
// apiFetch helper reads. Success bodies are handler-specific and written
// with respondJSON.
package api

import (
	"encoding/json"
	"net/http"
)

// respondJSON marshals v and writes it with the given status.
// Marshal failure downgrades to a plain 500 -- at that point there is no
// trustworthy body left to send.
func respondJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// respondError writes {"error": message} with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// InternalServerError logs the error and returns a generic 500 JSON response.
// Never exposes internal error details to prevent information leakage.
func InternalServerError(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, "internal server error", "error", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// BadRequest returns a 400 JSON response with the given message.
// Use for client input validation failures.
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, http.StatusBadRequest, message)
}

// Unauthorized returns a 401 JSON response with the given message.
// Use for missing or unverifiable credentials.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, http.StatusUnauthorized, message)
}

// Forbidden returns a 403 JSON response with the given message.
// Use when the caller is authenticated but not permitted.
func Forbidden(w http.ResponseWriter, message string) {
	respondError(w, http.StatusForbidden, message)
}

// NotFound returns a 404 JSON response.
func NotFound(w http.ResponseWriter) {
	respondError(w, http.StatusNotFound, "Not found")
}

// TooManyRequests returns a 429 JSON response with the quota message.
func TooManyRequests(w http.ResponseWriter) {
	respondError(w, http.StatusTooManyRequests, "Too many requests (limit: 60/min).")
}
