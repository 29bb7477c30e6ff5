package email

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"suitec/pkg/config"
	"suitec/pkg/logger"
	"suitec/pkg/models"
)

// ConsoleSender writes digests to stdout instead of delivering them. Used in
// development and tests; sent digests are captured for inspection.
type ConsoleSender struct {
	from          string
	subjPrefix    string
	disableOutput bool

	mu   sync.Mutex
	sent []Digest
}

var _ Sender = (*ConsoleSender)(nil)

// NewConsoleSender creates a console-backed digest sender
func NewConsoleSender(cfg config.EmailConfig) *ConsoleSender {
	return &ConsoleSender{
		from:       fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress),
		subjPrefix: "[" + cfg.FromName + "] ",
	}
}

// NewSilentConsoleSender creates a console sender that only captures, for
// use in tests
func NewSilentConsoleSender() *ConsoleSender {
	return &ConsoleSender{
		from:          "SuiteC <no-reply@suitec.local>",
		subjPrefix:    "[SuiteC] ",
		disableOutput: true,
	}
}

// SendDigest renders the digest and prints it
func (s *ConsoleSender) SendDigest(ctx context.Context, digest *Digest) error {
	if err := digest.Validate(); err != nil {
		return err
	}

	body, err := Render(digest)
	if err != nil {
		return models.NewEmailError(models.ErrCodeEmailDelivery, "failed to render digest", digest.Recipient.Email, err)
	}

	if !s.disableOutput {
		out := new(strings.Builder)
		fmt.Fprintf(out, "From: %s\n", s.from)
		fmt.Fprintf(out, "To: %s <%s>\n", digest.Recipient.FullName, digest.Recipient.Email)
		fmt.Fprintf(out, "Subject: %s%s\n", s.subjPrefix, digest.Subject)
		fmt.Fprintf(out, "Date: %s\n", time.Now().Format(time.RFC1123))
		fmt.Fprintf(out, "\n%s\n%s\n", body, strings.Repeat("-", 70))
		fmt.Fprint(os.Stdout, out.String())
	}

	s.mu.Lock()
	s.sent = append(s.sent, *digest)
	s.mu.Unlock()

	logger.Email(digest.Template, digest.Recipient.Email, nil)
	return nil
}

// Sent returns a copy of every digest delivered so far
func (s *ConsoleSender) Sent() []Digest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Digest, len(s.sent))
	copy(out, s.sent)
	return out
}

// Reset clears the captured digests
func (s *ConsoleSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
