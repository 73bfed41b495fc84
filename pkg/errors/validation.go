package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds composition ids accepted from callers.
const maxIDLength = 128

// ValidateCompositionID validates a composition id for safety.
// Ids become file names, redis keys and object keys, so anything that could
// escape a directory or smuggle control bytes is rejected:
//   - No empty ids
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateCompositionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "composition id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "composition id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "composition id contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "composition id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateKindName validates a block kind tag before registration.
// Kind tags are lower-case identifiers such as "tone" or "delay".
func ValidateKindName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidKind, "kind name cannot be empty")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_'):
		default:
			return New(ErrCodeInvalidKind, "kind name %q must be lower-case letters, digits, '-' or '_'", name)
		}
	}
	return nil
}
