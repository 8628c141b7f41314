// Package validation holds input checks for the values that end up in object
// keys. Tenant isolation depends on owner and filename never containing path
// separators, so these checks run before any key is constructed.
package validation

import "errors"

var violations = []error{
	ErrFilenameRequired,
	ErrFilenameInvalid,
	ErrFilenameTooLong,
	ErrUsernameRequired,
	ErrUsernameInvalid,
	ErrUsernameTooLong,
	ErrPasswordRequired,
}

// IsValidationError reports whether err is one of this package's violations,
// i.e. a client error rather than an operational failure.
func IsValidationError(err error) bool {
	for _, v := range violations {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
