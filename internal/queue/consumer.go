package queue

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg redis.XMessage) error
}

// Consumer reads a Redis stream through a consumer group. A failed message is
// left unacknowledged; the stalled-claim pass redelivers it after
// claimInterval, which doubles as the retry backoff. Once Redis reports
// maxAttempts deliveries the message moves to the dead-letter stream.
type Consumer struct {
	client        *redis.Client
	stream        string
	deadLetter    string
	group         string
	consumer      string
	claimInterval time.Duration
	maxAttempts   int64
	logger        zerolog.Logger
	handler       MessageHandler
}

func NewConsumer(
	client *redis.Client,
	stream, deadLetter, group, consumer string,
	claimInterval time.Duration,
	maxAttempts int64,
	logger zerolog.Logger,
	handler MessageHandler,
) *Consumer {
	return &Consumer{
		client:        client,
		stream:        stream,
		deadLetter:    deadLetter,
		group:         group,
		consumer:      consumer,
		claimInterval: claimInterval,
		maxAttempts:   maxAttempts,
		logger:        logger,
		handler:       handler,
	}
}

// Start creates the consumer group if needed and loops until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err(); err != nil && !isBusyGroup(err) {
		return err
	}

	ticker := time.NewTicker(c.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.retryStalled(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("stalled retry pass failed")
			}
		default:
		}
	}
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

// process runs the handler and acks on success. On failure the message stays
// pending for the retry pass.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	if err := c.handler.Handle(ctx, msg); err != nil {
		c.logger.Error().
			Err(err).
			Str("message_id", msg.ID).
			Msg("handle message failed, will retry")
		return
	}
	if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("ack failed")
	}
}

// retryStalled claims pending entries idle past claimInterval and retries
// them. Entries whose delivery count reached maxAttempts are copied to the
// dead-letter stream and acknowledged.
func (c *Consumer) retryStalled(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < c.claimInterval {
			continue
		}

		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.claimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.logger.Error().Err(err).Str("message_id", entry.ID).Msg("claim error")
			continue
		}

		for _, msg := range msgs {
			if entry.RetryCount >= c.maxAttempts {
				c.toDeadLetter(ctx, msg, entry.RetryCount)
				continue
			}
			c.process(ctx, msg)
		}
	}
	return nil
}

func (c *Consumer) toDeadLetter(ctx context.Context, msg redis.XMessage, attempts int64) {
	values := make(map[string]any, len(msg.Values)+2)
	for k, v := range msg.Values {
		values[k] = v
	}
	values["origin_id"] = msg.ID
	values["attempts"] = attempts

	if err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.deadLetter,
		Values: values,
	}).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dead-letter write failed")
		return
	}
	if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dead-letter ack failed")
	}
	c.logger.Warn().
		Str("message_id", msg.ID).
		Int64("attempts", attempts).
		Msg("message moved to dead-letter stream")
}
