package otp

import (
	"crypto/subtle"
	"fmt"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	// DefaultPeriod is the conventional TOTP time step.
	DefaultPeriod = 30 * time.Second
	// DefaultDigits is the conventional code length.
	DefaultDigits = 6
	// DefaultSkew accepts one step before and after the current one.
	DefaultSkew = 1

	// MaxDigits is the longest code a 31-bit truncated HMAC can fill.
	MaxDigits = 10
	// MaxSkew bounds the verification window to keep Verify cheap.
	MaxSkew = 10
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// GenerateCode returns the code for secret at the given time.
	GenerateCode(secret string, at time.Time) (Generated, error)
	// Verify checks code against secret within the skew window around at.
	Verify(secret, code string, at time.Time) (Result, error)
}

// Reason classifies a verification outcome.
type Reason int8

const (
	// ReasonMismatch means the code is well formed but matched no step in the window.
	ReasonMismatch Reason = iota
	// ReasonMatch means the code matched a step in the window.
	ReasonMatch
	// ReasonMalformedInput means the code is not exactly Digits decimal characters.
	ReasonMalformedInput
)

func (r Reason) String() string {
	switch r {
	case ReasonMatch:
		return "MATCH"
	case ReasonMalformedInput:
		return "MALFORMED_INPUT"
	default:
		return "MISMATCH"
	}
}

// Result is the outcome of Verify.
type Result struct {
	Valid  bool
	Reason Reason
	// Drift is the offset, in steps, of the matching step. Zero unless Valid.
	Drift  int
	Secret Secret
}

// Generated is the outcome of GenerateCode.
type Generated struct {
	Code   string
	Secret Secret
	Step   uint64
	// ExpiresAt is the first instant of the next time step.
	ExpiresAt time.Time
}

// Config holds the engine parameters.
type Config struct {
	// Period is the step duration, a positive whole number of seconds.
	Period time.Duration
	// Digits is the code length, 1 to MaxDigits.
	Digits int
	// Skew is how many steps before and after the current one Verify accepts, 0 to MaxSkew.
	Skew int
	// Epoch is T0, the time step zero starts at.
	Epoch time.Time
}

// DefaultConfig returns the 30s / 6 digits / ±1 step configuration with a Unix epoch.
func DefaultConfig() Config {
	return Config{
		Period: DefaultPeriod,
		Digits: DefaultDigits,
		Skew:   DefaultSkew,
		Epoch:  time.Unix(0, 0),
	}
}

// TOTP implements OTP using HMAC-SHA1 per RFC 6238.
type TOTP struct {
	period int64 // seconds
	digits int
	skew   int
	epoch  int64 // unix seconds
}

// NewTOTP validates cfg and builds an engine. Out-of-range parameters are
// reported as *ConfigurationError and are never replaced with defaults.
func NewTOTP(cfg Config) (*TOTP, error) {
	if cfg.Period < time.Second || cfg.Period%time.Second != 0 {
		return nil, &ConfigurationError{Field: "period", Value: cfg.Period, Reason: "must be a positive whole number of seconds"}
	}
	if cfg.Digits < 1 || cfg.Digits > MaxDigits {
		return nil, &ConfigurationError{Field: "digits", Value: cfg.Digits, Reason: fmt.Sprintf("must be between 1 and %d", MaxDigits)}
	}
	if cfg.Skew < 0 || cfg.Skew > MaxSkew {
		return nil, &ConfigurationError{Field: "skew", Value: cfg.Skew, Reason: fmt.Sprintf("must be between 0 and %d", MaxSkew)}
	}

	return &TOTP{
		period: int64(cfg.Period / time.Second),
		digits: cfg.Digits,
		skew:   cfg.Skew,
		epoch:  cfg.Epoch.Unix(),
	}, nil
}

// GenerateCode returns the code for secret at the given time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (Generated, error) {
	sec := NormalizeSecret(secret)
	step := o.step(at)

	code, err := o.codeAt(sec.Canonical, step)
	if err != nil {
		return Generated{}, err
	}

	return Generated{
		Code:      code,
		Secret:    sec,
		Step:      step,
		ExpiresAt: time.Unix(o.epoch+int64(step+1)*o.period, 0),
	}, nil
}

// Verify checks code against secret for every step in the skew window.
//
// The candidate is used verbatim: surrounding whitespace makes it malformed.
// Every step in the window is computed and compared in constant time, so the
// time taken does not depend on whether, where, or at which step it matched.
func (o *TOTP) Verify(secret, code string, at time.Time) (Result, error) {
	sec := NormalizeSecret(secret)
	if !o.wellFormed(code) {
		return Result{Reason: ReasonMalformedInput, Secret: sec}, nil
	}

	current := int64(o.step(at))
	skew := int64(o.skew)
	candidate := []byte(code)

	matched, drift := 0, 0
	for offset := -skew; offset <= skew; offset++ {
		counter := current + offset
		if counter < 0 {
			continue
		}

		expected, err := o.codeAt(sec.Canonical, uint64(counter))
		if err != nil {
			return Result{}, err
		}

		eq := subtle.ConstantTimeCompare([]byte(expected), candidate)
		drift = subtle.ConstantTimeSelect(eq&^matched, int(offset), drift)
		matched |= eq
	}

	if matched == 1 {
		return Result{Valid: true, Reason: ReasonMatch, Drift: drift, Secret: sec}, nil
	}
	return Result{Reason: ReasonMismatch, Secret: sec}, nil
}

// step returns floor((at - epoch) / period); instants before the epoch map to 0.
func (o *TOTP) step(at time.Time) uint64 {
	elapsed := at.Unix() - o.epoch
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / o.period)
}

func (o *TOTP) codeAt(canonical string, counter uint64) (string, error) {
	code, err := hotp.GenerateCodeCustom(canonical, counter, hotp.ValidateOpts{
		Digits:    libotp.Digits(o.digits),
		Algorithm: libotp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otp: derive code for step %d: %w", counter, err)
	}
	return code, nil
}

func (o *TOTP) wellFormed(code string) bool {
	if len(code) != o.digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
