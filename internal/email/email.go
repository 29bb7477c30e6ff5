// Package email delivers digest notification emails.
// Sending is best-effort: the digest builders log failures and move on, so
// implementations must never panic and never block forever.
package email

import (
	"context"
	"fmt"

	"suitec/pkg/models"
)

// Digest is one rendered digest email. Data is the render payload
// (models.WeeklyDigest or models.DailyDigest) fed to the named template.
type Digest struct {
	Subject   string
	Recipient *models.User
	Course    *models.Course
	Template  string
	Data      interface{}
}

// Sender delivers digest emails
type Sender interface {
	SendDigest(ctx context.Context, digest *Digest) error
}

// Validate checks that a digest can be delivered at all
func (d *Digest) Validate() error {
	if d.Recipient == nil || d.Recipient.Email == "" {
		return fmt.Errorf("digest has no recipient: %w", models.ErrNoRecipients)
	}
	if d.Subject == "" {
		return fmt.Errorf("digest has no subject: %w", models.ErrInvalidInput)
	}
	if d.Template == "" {
		return fmt.Errorf("digest has no template: %w", models.ErrInvalidInput)
	}
	return nil
}
