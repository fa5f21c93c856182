package errors

import (
	"strings"
	"unicode"
)

// ValidateRecordID validates a record identifier for safety and correctness.
// Record ids flow into cache keys, file names, and DOT output, so the rules
// are intentionally conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
func ValidateRecordID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidRecord, "record id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidRecord, "record id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRecord, "record id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidRecord, "record id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a local feed file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// sourceSchemes lists the DSN schemes the source factory accepts.
var sourceSchemes = []string{"http://", "https://", "sqlite://", "mongodb://", "mongodb+srv://", "file://"}

// ValidateSourceDSN validates a feed source DSN. A DSN is either a local
// file path or a URL with a supported scheme.
func ValidateSourceDSN(dsn string) error {
	if dsn == "" {
		return New(ErrCodeInvalidSource, "source cannot be empty")
	}

	for _, r := range dsn {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source contains invalid characters")
		}
	}

	if !strings.Contains(dsn, "://") {
		// Bare path: treated as a local file.
		return nil
	}

	for _, scheme := range sourceSchemes {
		if strings.HasPrefix(dsn, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidSource, "unsupported source scheme in %q", dsn)
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
