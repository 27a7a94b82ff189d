package errors

import (
	"strings"
	"unicode"
)

// maxSearchLength bounds the search term accepted from the CLI and the API.
const maxSearchLength = 256

// ValidateSearchTerm validates a dependency search term.
// An empty term is valid and disables filtering.
func ValidateSearchTerm(term string) error {
	if len(term) > maxSearchLength {
		return New(ErrCodeInvalidSearch, "search term too long (max %d characters)", maxSearchLength)
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSearch, "search term contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a solution, project or restore-graph path supplied
// by a caller.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateAnalysisID validates an analysis identifier used by the history store.
// Identifiers are UUID strings; only hex digits and dashes are accepted.
func ValidateAnalysisID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "analysis id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "analysis id too long")
	}
	for _, r := range id {
		if !(r == '-' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')) {
			return New(ErrCodeInvalidInput, "analysis id contains invalid characters: %q", id)
		}
	}
	return nil
}
