package mail

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"
)

type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

// resendErrPrefix is what resend-go puts in front of API error messages.
const resendErrPrefix = "[ERROR]: "

// Send wraps API failures in ErrSend carrying Resend's message without the
// SDK prefix, the same shape SMTPMailer returns.
func (r *ResendMailer) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.From,
		To:      cleanAddrs(m.To),
		Subject: m.Subject,
		Html:    m.HTMLBody,
		Text:    m.TextBody,
	})
	if err != nil {
		return resendError(err)
	}
	slog.Debug("resend accepted message", "id", sent.Id)
	return nil
}

// resendError wraps an SDK failure as ErrSend with the API's own message.
func resendError(err error) error {
	msg := err.Error()
	if !strings.HasPrefix(msg, resendErrPrefix) {
		return ErrSend{Provider: "resend", Err: err}
	}
	return ErrSend{Provider: "resend", Err: errors.New(strings.TrimPrefix(msg, resendErrPrefix))}
}
