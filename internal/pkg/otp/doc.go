// Package otp implements time-based one-time passwords (TOTP, RFC 6238).
//
// Secrets are accepted in any shape: NormalizeSecret turns the caller's input
// into canonical Base32 and never fails, so the engine only reports per-code
// outcomes (match, mismatch, malformed) and configuration errors.
//
// A TOTP value is immutable after construction and safe for concurrent use.
package otp
