package validation

import (
	"errors"
	"strings"
)

var (
	ErrFilenameRequired = errors.New("filename required")
	ErrFilenameInvalid  = errors.New("filename must be a single path segment without separators")
	ErrFilenameTooLong  = errors.New("filename must be at most 255 characters")
)

const maxFilenameLength = 255

// ValidateFilename ensures a client-supplied filename is safe to append to a
// tenant prefix. Filenames become the second segment of an object key, so
// anything that could textually escape the owner's prefix is rejected rather
// than sanitized.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrFilenameRequired
	}
	if len(filename) > maxFilenameLength {
		return ErrFilenameTooLong
	}
	if strings.ContainsAny(filename, "/\\\x00") {
		return ErrFilenameInvalid
	}
	if filename == "." || filename == ".." {
		return ErrFilenameInvalid
	}
	return nil
}
