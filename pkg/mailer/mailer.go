package mailer

import "context"

// Message is a single outbound email.
type Message struct {
	ToName      string
	ToEmail     string
	Subject     string
	HTMLContent string
	TextContent string
}

// Mailer delivers messages through an external transport. Implementations
// make exactly one attempt; retry policy belongs to callers, and the
// conversion pipeline deliberately has none.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
