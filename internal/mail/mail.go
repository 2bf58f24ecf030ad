// Package mail sends transactional email through Resend or plain SMTP.
package mail

import (
	"context"
	"strings"

	"portfolio-backend/internal/config"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// New builds the mailer selected by provider. apiKey is only used by Resend.
func New(provider, apiKey string, smtp config.SMTPConfig) (Mailer, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "resend":
		return NewResendMailer(apiKey), nil
	case "smtp":
		return NewSMTPMailer(smtp), nil
	default:
		return nil, ErrUnknownProvider{Name: provider}
	}
}
