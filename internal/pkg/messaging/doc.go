// Package messaging provides a broker-agnostic API for publishing messages.
//
// Use cases depend on the Publisher interface; the concrete broker (NATS, NSQ,
// Kafka, Google Pub/Sub, Redis pub/sub) is selected at startup by driver name
// through NewFromDriver. The noop driver discards every message and is the
// default when no broker is configured.
package messaging
