package tasks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"coursehub/internal/mail"
	"coursehub/internal/notify"
)

// Notifier turns queued notifications into emails. It is the worker-side
// counterpart of notify.StreamDispatcher.
type Notifier struct {
	mailer mail.Mailer
	logger zerolog.Logger
}

func NewNotifier(mailer mail.Mailer, logger zerolog.Logger) *Notifier {
	return &Notifier{mailer: mailer, logger: logger}
}

func (n *Notifier) Handle(ctx context.Context, msg redis.XMessage) error {
	notification, err := notify.DecodeMessage(msg.Values)
	if err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}

	subject, body, err := notify.Render(notification)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, mail.Message{
		ToName:  notification.RecipientName,
		ToEmail: notification.RecipientEmail,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return fmt.Errorf("send %s: %w", notification.Kind, err)
	}

	n.logger.Info().
		Str("kind", string(notification.Kind)).
		Str("recipient", notification.RecipientEmail).
		Msg("notification delivered")
	return nil
}
