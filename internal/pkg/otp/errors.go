package otp

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel wrapped by every ConfigurationError.
var ErrInvalidConfig = errors.New("otp: invalid configuration")

// ConfigurationError reports an engine parameter outside its allowed range.
//
// It is a programming error and is only returned from NewTOTP.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("otp: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}
