package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPEmailSender delivers email through an SMTP server using gomail.
type SMTPEmailSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPEmailSender creates a sender for the given SMTP server.
func NewSMTPEmailSender(host string, port int, user, pass, from string) *SMTPEmailSender {
	return &SMTPEmailSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// SendEmail composes and sends a plain-text message. gomail does not take a
// context; the ctx parameter is checked for cancellation before dialing.
func (s *SMTPEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
