package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleSender logs messages instead of delivering them. Used in development
// when no Twilio or SMTP credentials are configured.
type ConsoleSender struct {
	logger zerolog.Logger
}

func NewConsoleSender(logger zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info().
		Str("channel", "sms").
		Str("to", to).
		Str("body", body).
		Msg("console notification")
	return nil
}

func (s *ConsoleSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info().
		Str("channel", "email").
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("console notification")
	return nil
}
