package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds person ids accepted from users and the backend.
const maxIDLength = 128

// ValidatePersonID validates a person id before it is used in a URL path or
// as a graph key. Backend ids are opaque, so only the characters that could
// break path construction are rejected:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidatePersonID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "person id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "person id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "person id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\?#") || strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "person id contains invalid characters: %q", id)
	}
	return nil
}

// chartNameRegex matches chart names usable as file names and document keys.
var chartNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// ValidateChartName validates the name of a stored chart snapshot.
func ValidateChartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "chart name cannot be empty")
	}
	if strings.Contains(name, "..") || !chartNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid chart name: %q", name)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateGender accepts the backend's gender markers: "M", "F" or empty.
func ValidateGender(g string) error {
	switch g {
	case "", "M", "F":
		return nil
	}
	return New(ErrCodeInvalidInput, "gender must be M, F or empty, got %q", g)
}
