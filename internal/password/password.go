// Package password enforces the account password policy applied on
// registration and password change.
package password

import (
	"errors"
	"strings"
	"unicode"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	minLength      = 10
	minEntropyBits = 60

	specialRunes = `!@#$%^&*()-_=+{};:,.<>/?\|"'`
)

var (
	ErrTooShort    = errors.New("password must be at least 10 characters long")
	ErrNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit     = errors.New("password must contain at least one digit")
	ErrNoSpecial   = errors.New("password must contain at least one special character")
	ErrTooWeak     = errors.New("password is too weak")
)

// ValidatePassword checks password against the policy: length, the four
// character classes, then an entropy estimate to reject patterns like
// "Aaaaaaaa1!". The returned error message is safe to show the client.
func ValidatePassword(password string) error {
	if len(password) < minLength {
		return ErrTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialRunes, r):
			hasSpecial = true
		}
	}
	switch {
	case !hasUpper:
		return ErrNoUppercase
	case !hasLower:
		return ErrNoLowercase
	case !hasDigit:
		return ErrNoDigit
	case !hasSpecial:
		return ErrNoSpecial
	}

	if err := passwordvalidator.Validate(password, minEntropyBits); err != nil {
		return errors.Join(ErrTooWeak, err)
	}
	return nil
}
