package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds person and chart identifiers.
const maxIDLength = 256

// ValidatePersonID validates a person identifier.
//
// Identifiers are opaque strings, but they travel through URLs, cache keys
// and DOT documents, so the rules reject what would break those:
//   - No empty ids
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPerson, "person id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidPerson, "person id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPerson, "person id %q contains invalid control characters", id)
		}
	}

	return nil
}

// ValidateChartName validates a human-readable chart name used by stores.
// Names are free text but must be non-empty, single-line, and bounded.
func ValidateChartName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "chart name cannot be empty")
	}

	if len(name) > maxIDLength {
		return New(ErrCodeInvalidInput, "chart name too long (max %d characters)", maxIDLength)
	}

	if strings.ContainsAny(name, "\r\n\x00") {
		return New(ErrCodeInvalidInput, "chart name must be a single line")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
