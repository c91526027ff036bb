// validate.go -- input constraint checks for message handlers.
//
// Validation reports every violated constraint, not just the first, so the
// client can surface all field errors in one round trip. Character limits
// count runes, not bytes.
package api

import (
	netmail "net/mail"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 80
	maxEmailLen   = 120
	maxMessageLen = 2000
)

// createMessageInput is the POST /messages request body.
type createMessageInput struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Message       string  `json:"message"`
	AttachmentURL *string `json:"attachmentUrl"`
}

// validateBody checks the message body bounds; returns violation or "".
func validateBody(body string) string {
	if n := utf8.RuneCountInString(body); n < 1 || n > maxMessageLen {
		return "message must be between 1 and 2000 characters"
	}
	return ""
}

// validateCreateMessage aggregates all violated constraints into one
// comma-separated message; returns "" when the input is valid.
func validateCreateMessage(in createMessageInput) string {
	var violations []string

	if n := utf8.RuneCountInString(in.Name); n < 1 || n > maxNameLen {
		violations = append(violations, "name must be between 1 and 80 characters")
	}

	if _, err := netmail.ParseAddress(in.Email); err != nil || len(in.Email) > maxEmailLen {
		violations = append(violations, "email must be a valid address of at most 120 characters")
	}

	if msg := validateBody(in.Message); msg != "" {
		violations = append(violations, msg)
	}

	// attachmentUrl is optional -- absent or null passes; when present it
	// must be an absolute URL.
	if in.AttachmentURL != nil {
		u, err := url.Parse(*in.AttachmentURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			violations = append(violations, "attachmentUrl must be a valid URL")
		}
	}

	if len(violations) == 0 {
		return ""
	}
	return strings.Join(violations, ", ")
}

// clampLimit parses a caller-supplied limit query value and clamps it to
// [1, 100]. Missing or unparseable values fall back to the default of 50.
func clampLimit(raw string) int {
	if raw == "" {
		return 50
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 50
	}
	if n > 100 {
		return 100
	}
	return n
}
