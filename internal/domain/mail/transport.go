package mail

import "context"

// Message is a single outbound e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Transport defines a delivery channel for e-mail messages.
// This decouples the dispatcher from the concrete backends (file record, SMTP).
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}
