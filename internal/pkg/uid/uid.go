// Package uid generates identifiers: UUIDv7 strings for request correlation
// and Snowflake numbers for events.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// NumberID generates roughly time-ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}
