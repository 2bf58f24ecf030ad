package mail

import (
	"context"
	"crypto/tls"
	"time"

	"gopkg.in/gomail.v2"

	"portfolio-backend/internal/config"
)

type SMTPMailer struct {
	cfg config.SMTPConfig
	// dial is swapped in tests.
	dial func(d *gomail.Dialer, m *gomail.Message) error
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		dial: func(d *gomail.Dialer, m *gomail.Message) error {
			return d.DialAndSend(m)
		},
	}
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}
	msg := buildMessage(m)
	d := s.newDialer()

	done := make(chan error, 1)
	go func() {
		done <- s.dial(d, msg)
	}()

	// Respect ctx deadline if it's sooner than our config timeout.
	wait := s.timeout()
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < wait {
			wait = d
		}
	}

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "gomail/smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return context.DeadlineExceeded
	}
}

func (s *SMTPMailer) timeout() time.Duration {
	if s.cfg.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.cfg.TimeoutSeconds) * time.Second
}

func (s *SMTPMailer) newDialer() *gomail.Dialer {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.SSL = s.cfg.UseTLS
	if s.cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	}
	return d
}

func buildMessage(m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", cleanAddrs(m.To)...)
	msg.SetHeader("Subject", m.Subject)

	switch {
	case m.TextBody != "" && m.HTMLBody != "":
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case m.HTMLBody != "":
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}
	return msg
}
