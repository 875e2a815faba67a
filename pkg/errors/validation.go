package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ReservedKeys are the node attribute names owned by the tree itself.
// They must never appear inside a node's data map.
var ReservedKeys = []string{"id", "topic", "children", "direction", "expanded", "selectedType"}

// maxIDLength bounds node and map identifiers.
const maxIDLength = 256

// ValidateNodeID validates a node identifier.
//
// Identifiers must be non-empty, at most 256 bytes, free of control
// characters, and must not carry leading or trailing whitespace.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}
	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "node id cannot start or end with whitespace: %q", id)
	}
	return nil
}

// ValidateTopic validates a node topic. Topics may contain any printable
// text but cannot be empty or whitespace only.
func ValidateTopic(topic string) error {
	if strings.TrimSpace(topic) == "" {
		return New(ErrCodeInvalidInput, "topic cannot be empty")
	}
	return nil
}

// ValidateData rejects data maps that carry a reserved key.
func ValidateData(data map[string]any) error {
	for _, k := range ReservedKeys {
		if _, ok := data[k]; ok {
			return New(ErrCodeInvalidInput, "data cannot contain reserved key %q", k)
		}
	}
	return nil
}

// mapIDRegex matches identifiers safe to use as file names and store keys.
var mapIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateMapID validates a stored map identifier for safety.
// It rejects identifiers that could be used for path traversal when the
// identifier is turned into a file name or a key.
//
// Validation rules:
//   - Identifier cannot be empty
//   - Maximum length of 256 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No path traversal sequences (..)
func ValidateMapID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "map id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidPath, "map id too long (max %d characters)", maxIDLength)
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidPath, "map id cannot contain path traversal sequences (..)")
	}
	if !mapIDRegex.MatchString(id) {
		return New(ErrCodeInvalidPath, "invalid map id: %q", id)
	}
	return nil
}
