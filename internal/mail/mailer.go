package mail

import "context"

// Message is a single plain-text email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Body    string
}

// Mailer delivers a message through a transactional email provider. Delivery
// is at-least-once; callers retry on error.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
