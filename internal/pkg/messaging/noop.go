package messaging

import (
	"context"
	"time"
)

// Noop accepts and discards every message.
type Noop struct{}

// NewNoop returns a publisher that drops messages.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish validates the destination and drops the message.
func (*Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (*Noop) Close() error {
	return nil
}
