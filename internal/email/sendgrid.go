package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/time/rate"

	"suitec/pkg/config"
	"suitec/pkg/logger"
	"suitec/pkg/models"
)

// sendgridSender delivers digests through the SendGrid API. Sends are
// throttled so a large course cannot trip the provider's rate limits.
type sendgridSender struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
	limiter    *rate.Limiter
}

var _ Sender = (*sendgridSender)(nil)

// NewSendgridSender creates a SendGrid-backed digest sender
func NewSendgridSender(cfg config.EmailConfig) Sender {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	return &sendgridSender{
		client:     sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		subjPrefix: "[" + cfg.FromName + "] ",
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// SendDigest renders and delivers one digest email
func (s *sendgridSender) SendDigest(ctx context.Context, digest *Digest) error {
	if err := digest.Validate(); err != nil {
		return err
	}

	body, err := Render(digest)
	if err != nil {
		return models.NewEmailError(models.ErrCodeEmailDelivery, "failed to render digest", digest.Recipient.Email, err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return models.NewEmailError(models.ErrCodeEmailDelivery, "send throttle interrupted", digest.Recipient.Email, err)
	}

	to := sgmail.NewEmail(digest.Recipient.FullName, digest.Recipient.Email)
	message := sgmail.NewSingleEmail(s.from, s.subjPrefix+digest.Subject, to, body, "")

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.Email(digest.Template, digest.Recipient.Email, err)
		return models.NewEmailError(models.ErrCodeEmailDelivery, "sendgrid send failed", digest.Recipient.Email, err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
		logger.Email(digest.Template, digest.Recipient.Email, err)
		return models.NewEmailError(models.ErrCodeEmailDelivery, "sendgrid rejected message", digest.Recipient.Email, err)
	}

	logger.Email(digest.Template, digest.Recipient.Email, nil)
	return nil
}
