package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/cache"
	"coursehub/internal/config"
	"coursehub/internal/log"
	"coursehub/internal/mail"
	"coursehub/internal/queue"
	"coursehub/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	client, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	var mailer mail.Mailer
	switch cfg.Mail.Provider {
	case "sendgrid":
		mailer = mail.NewSendGridMailer(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	default:
		mailer = mail.NewConsoleMailer(logger)
	}

	notifier := tasks.NewNotifier(mailer, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Notify.Stream,
		cfg.Notify.DeadLetterStream,
		cfg.Notify.Group,
		cfg.Notify.Consumer,
		cfg.Notify.ClaimInterval,
		cfg.Notify.MaxAttempts,
		logger,
		notifier,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Start(ctx); err != nil && err != context.Canceled {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	time.Sleep(500 * time.Millisecond)
}
