// Package mailer sends the platform's transactional email - order
// confirmations today, anything the notify worker picks up tomorrow.
// Production delivery goes through Postmark; DevSender logs instead of
// sending for environments without credentials.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrSendFailed wraps delivery failures.
	ErrSendFailed = errors.New("mailer: send failed")

	// ErrInvalidConfig is returned for incomplete sender configuration.
	ErrInvalidConfig = errors.New("mailer: invalid config")

	// ErrInvalidParams is returned for unsendable message parameters.
	ErrInvalidParams = errors.New("mailer: invalid send params")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Sender delivers one email message.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams describes one outbound message.
type SendParams struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

// Validate checks the parameters before any delivery attempt.
func (p SendParams) Validate() error {
	if !emailPattern.MatchString(p.To) {
		return fmt.Errorf("%w: recipient %q is not a valid address", ErrInvalidParams, p.To)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// Config holds delivery configuration. The Postmark tokens are optional so
// development environments can run with the dev sender instead.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"MAIL_SENDER_EMAIL"`
	SupportEmail         string `env:"MAIL_SUPPORT_EMAIL"`
}
