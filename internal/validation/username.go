package validation

import (
	"errors"
	"strings"
)

var (
	ErrUsernameRequired = errors.New("username required")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits, '.', '-' and '_'")
	ErrUsernameTooLong  = errors.New("username must be at most 64 characters")
	ErrPasswordRequired = errors.New("password required")
)

const maxUsernameLength = 64

// ValidateUsername is stricter than filename validation because the username
// is the tenant prefix of every object key the user will ever touch.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return ErrUsernameInvalid
		}
	}
	if strings.HasPrefix(username, ".") {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword only requires presence; hashing happens upstream.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}
