package utils

import (
	"regexp"
	"strings"

	"suitec/pkg/models"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateUsername checks if username is well-formed
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateEmail checks if an email address is plausible. Digest recipients
// without a valid address are skipped, never errored.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateAssetTitle validates asset title
func ValidateAssetTitle(title string) error {
	if len(strings.TrimSpace(title)) < 1 {
		return models.ErrInvalidInput
	}
	if len(title) > 255 {
		return models.ErrInvalidInput
	}
	return nil
}
