package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateName validates a document or upload name for safety.
// Names end up in file paths and cache keys, so path components,
// control characters and overly long values are rejected.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "name cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidName, "name cannot be %q", name)
	}
	return nil
}

// ValidateUploadFilename validates an uploaded file name and returns its
// lower-cased extension. Only the base name is considered; clients may send
// full paths.
func ValidateUploadFilename(filename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if err := ValidateName(base); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "", New(ErrCodeUnsupportedFormat, "file %q has no extension", base)
	}
	return ext, nil
}
