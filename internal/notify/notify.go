package notify

import (
	"context"
	"errors"
)

var ErrNotInitialized = errors.New("notification sender is not initialized")

// Message is one outbound notification.
type Message struct {
	To       string
	Subject  string
	Body     string
	FromName string
}

// Receipt identifies a delivered message.
type Receipt struct {
	MessageID string
}

// Sender delivers notifications to an external channel.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	Initialized() bool
}
