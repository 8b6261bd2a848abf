package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleMailer logs messages instead of sending them. Used in development
// and tests.
type ConsoleMailer struct {
	log zerolog.Logger
}

var _ Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(log zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("email (console)\n" + msg.Body)
	return nil
}
