package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a node or snapshot name for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 255 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidInput, "name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateStoreKey validates a snapshot store key. Keys become file names in
// the file store, so they must be simple base names.
func ValidateStoreKey(key string) error {
	if err := ValidateName(key); err != nil {
		return err
	}

	if strings.ContainsAny(key, "/\\") {
		return New(ErrCodeInvalidInput, "key cannot contain path separators")
	}

	if strings.HasPrefix(key, ".") {
		return New(ErrCodeInvalidInput, "key cannot start with a dot")
	}

	return nil
}

// ValidatePath validates a source path given to a scan.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
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

// ValidateDimensions checks that a layout frame has a positive area.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "frame must have positive dimensions, got %dx%d", width, height)
	}
	return nil
}
