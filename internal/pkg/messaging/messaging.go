package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when a feature is not supported by the selected broker.
	ErrUnsupported = errors.New("messaging: unsupported operation")
	// ErrDestinationRequired is returned when Publish is called without a destination.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned when publishing on a closed client.
	ErrClosed = errors.New("messaging: client is closed")
)

// Messaging is a broker client owned by the application.
type Messaging interface {
	io.Closer
	Publisher
}

// Publisher publishes messages to a destination (topic, subject or channel).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key is used by Kafka for partitioning.
	Key []byte

	Headers []Header

	// Attributes is for brokers that model string attributes (Pub/Sub).
	Attributes map[string]string

	// Delay requests deferred delivery; only NSQ supports it.
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	// Receivers is the number of Redis subscribers that got the message.
	Receivers int64
	Timestamp time.Time
}

// headerAttributes flattens headers into string attributes, keeping explicit
// attributes on key collisions.
func headerAttributes(msg OutgoingMessage) map[string]string {
	if len(msg.Headers) == 0 {
		return msg.Attributes
	}

	attrs := make(map[string]string, len(msg.Headers)+len(msg.Attributes))
	for _, h := range msg.Headers {
		if h.Key == "" {
			continue
		}
		attrs[h.Key] = string(h.Value)
	}
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	return attrs
}
