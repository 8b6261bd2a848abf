package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StreamDispatcher enqueues notifications onto a Redis stream consumed by the
// worker. Enqueue failure is surfaced to the caller but never blocks or
// reverses the status change that triggered it.
type StreamDispatcher struct {
	client *redis.Client
	stream string
	log    zerolog.Logger
}

func NewStreamDispatcher(client *redis.Client, stream string, log zerolog.Logger) *StreamDispatcher {
	return &StreamDispatcher{client: client, stream: stream, log: log}
}

func (d *StreamDispatcher) Enqueue(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("marshal notification data: %w", err)
	}

	id, err := d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]any{
			"kind":            string(n.Kind),
			"recipient_email": n.RecipientEmail,
			"recipient_name":  n.RecipientName,
			"data":            string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", d.stream, err)
	}

	d.log.Debug().
		Str("kind", string(n.Kind)).
		Str("message_id", id).
		Msg("notification enqueued")
	return nil
}

// DecodeMessage rebuilds a Notification from the stream message values.
func DecodeMessage(values map[string]any) (Notification, error) {
	n := Notification{
		Kind:           Kind(stringValue(values, "kind")),
		RecipientEmail: stringValue(values, "recipient_email"),
		RecipientName:  stringValue(values, "recipient_name"),
	}
	if n.Kind == "" || n.RecipientEmail == "" {
		return Notification{}, fmt.Errorf("notification message missing kind or recipient")
	}
	if raw := stringValue(values, "data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &n.Data); err != nil {
			return Notification{}, fmt.Errorf("unmarshal notification data: %w", err)
		}
	}
	return n, nil
}

func stringValue(values map[string]any, key string) string {
	s, _ := values[key].(string)
	return s
}
