package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values of various types.
//
// Missing keys and values that cannot be converted yield the zero value of the
// requested type; callers register defaults up front instead of checking.
type Config interface {
	io.Closer

	// GetBool retrieves the value associated with the given key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value associated with the given key as a string.
	GetString(key string) string

	// GetInt retrieves the value associated with the given key as an int.
	GetInt(key string) int

	// GetInt64 retrieves the value associated with the given key as an int64.
	GetInt64(key string) int64

	// GetUint retrieves the value associated with the given key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value associated with the given key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the value associated with the given key as seconds.
	GetSecond(key string) time.Duration

	// GetArray retrieves the value associated with the given key as a slice of strings.
	// Values may be a list or a string with format <element1>,<element2>,...
	// Elements are trimmed and empty ones dropped.
	GetArray(key string) []string
}
