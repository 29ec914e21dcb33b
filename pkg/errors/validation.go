package errors

import (
	"strings"
	"unicode"
)

// Output size bounds accepted by the export pipeline, in pixels.
const (
	MinOutputSize = 16
	MaxOutputSize = 8192
)

// maxAssetNameLength bounds template and glyph references.
const maxAssetNameLength = 256

// ValidateAssetName validates a template name or glyph filename before it is
// joined onto a candidate root directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No absolute paths
//   - No hidden files
//   - Maximum length of 256 characters
//
// Callers treat a rejected name as a missing asset rather than a fatal error.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidAssetName, "asset name cannot be empty")
	}

	if len(name) > maxAssetNameLength {
		return New(ErrCodeInvalidAssetName, "asset name too long (max %d characters)", maxAssetNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAssetName, "asset name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidAssetName, "asset name contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidAssetName, "asset name cannot be a hidden file")
	}

	return nil
}

// ValidateSize checks that a requested square output size is renderable.
func ValidateSize(size int) error {
	if size < MinOutputSize || size > MaxOutputSize {
		return New(ErrCodeInvalidSize, "output size %d out of range [%d, %d]", size, MinOutputSize, MaxOutputSize)
	}
	return nil
}
