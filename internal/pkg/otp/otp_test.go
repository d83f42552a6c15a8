package otp

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSecret = "JBSWY3DPEHPK3PXP"

// t0 sits in step 56666666, which spans [1699999980, 1700000010).
var t0 = time.Unix(1700000000, 0)

func newEngine(t *testing.T, mutate ...func(*Config)) *TOTP {
	t.Helper()

	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	engine, err := NewTOTP(cfg)
	require.NoError(t, err)
	return engine
}

func TestNewTOTP_ConfigurationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   func(*Config)
		field string
	}{
		{name: "zero period", cfg: func(c *Config) { c.Period = 0 }, field: "period"},
		{name: "negative period", cfg: func(c *Config) { c.Period = -30 * time.Second }, field: "period"},
		{name: "fractional period", cfg: func(c *Config) { c.Period = 1500 * time.Millisecond }, field: "period"},
		{name: "zero digits", cfg: func(c *Config) { c.Digits = 0 }, field: "digits"},
		{name: "too many digits", cfg: func(c *Config) { c.Digits = 11 }, field: "digits"},
		{name: "negative skew", cfg: func(c *Config) { c.Skew = -1 }, field: "skew"},
		{name: "skew too wide", cfg: func(c *Config) { c.Skew = MaxSkew + 1 }, field: "skew"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.cfg(&cfg)

			engine, err := NewTOTP(cfg)
			require.Error(t, err)
			assert.Nil(t, engine)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNewTOTP_Bounds(t *testing.T) {
	t.Parallel()

	for _, digits := range []int{1, MaxDigits} {
		_, err := NewTOTP(Config{Period: time.Minute, Digits: digits, Skew: MaxSkew})
		assert.NoError(t, err, "digits %d", digits)
	}
}

func TestTOTP_GenerateCode(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	got, err := engine.GenerateCode(demoSecret, t0)
	require.NoError(t, err)
	assert.Equal(t, "324550", got.Code)
	assert.Equal(t, uint64(56666666), got.Step)
	assert.Equal(t, time.Unix(1700000010, 0), got.ExpiresAt)
	assert.Equal(t, Secret{Canonical: demoSecret}, got.Secret)

	for _, ts := range []int64{1699999980, 1700000005, 1700000009} {
		again, err := engine.GenerateCode(demoSecret, time.Unix(ts, 0))
		require.NoError(t, err)
		assert.Equal(t, got.Code, again.Code, "same step at %d", ts)
	}

	next, err := engine.GenerateCode(demoSecret, time.Unix(1700000010, 0))
	require.NoError(t, err)
	assert.Equal(t, "367665", next.Code)
}

func TestTOTP_GenerateCode_RFC6238(t *testing.T) {
	t.Parallel()

	// RFC 6238 Appendix B, SHA1. The ASCII key is not Base32 and goes
	// through the fallback encoding unchanged.
	engine := newEngine(t, func(c *Config) { c.Digits = 8 })

	vectors := map[int64]string{
		59:          "94287082",
		1111111109:  "07081804",
		1111111111:  "14050471",
		1234567890:  "89005924",
		2000000000:  "69279037",
		20000000000: "65353130",
	}

	for ts, want := range vectors {
		got, err := engine.GenerateCode("12345678901234567890", time.Unix(ts, 0))
		require.NoError(t, err)
		assert.Equal(t, want, got.Code, "time %d", ts)
		assert.True(t, got.Secret.Coerced)
	}
}

func TestTOTP_GenerateCode_Parameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  func(*Config)
		at   time.Time
		want string
	}{
		{name: "one digit", cfg: func(c *Config) { c.Digits = 1 }, at: t0, want: "0"},
		{name: "ten digits", cfg: func(c *Config) { c.Digits = 10 }, at: t0, want: "1802324550"},
		{name: "sixty second period", cfg: func(c *Config) { c.Period = time.Minute }, at: t0, want: "508648"},
		{name: "custom epoch", cfg: func(c *Config) { c.Epoch = time.Unix(1600000000, 0) }, at: t0, want: "999885"},
		{name: "before epoch clamps to step zero", cfg: func(c *Config) { c.Epoch = time.Unix(1800000000, 0) }, at: t0, want: "282760"},
		{name: "unix epoch start", at: time.Unix(0, 0), want: "282760"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var mutate []func(*Config)
			if tt.cfg != nil {
				mutate = append(mutate, tt.cfg)
			}
			engine := newEngine(t, mutate...)

			got, err := engine.GenerateCode(demoSecret, tt.at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestTOTP_GenerateCode_EmptySecret(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	got, err := engine.GenerateCode("", time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "328482", got.Code)
	assert.False(t, got.Secret.Coerced)

	res, err := engine.Verify("", "328482", time.Unix(0, 0))
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestTOTP_Verify(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	tests := []struct {
		name      string
		code      string
		wantValid bool
		reason    Reason
		drift     int
	}{
		{name: "current step", code: "324550", wantValid: true, reason: ReasonMatch, drift: 0},
		{name: "previous step", code: "822542", wantValid: true, reason: ReasonMatch, drift: -1},
		{name: "next step", code: "367665", wantValid: true, reason: ReasonMatch, drift: 1},
		{name: "two steps behind", code: "968785", reason: ReasonMismatch},
		{name: "two steps ahead", code: "870960", reason: ReasonMismatch},
		{name: "wrong code", code: "000000", reason: ReasonMismatch},
		{name: "non numeric", code: "12a45", reason: ReasonMalformedInput},
		{name: "non numeric right length", code: "32455O", reason: ReasonMalformedInput},
		{name: "too short", code: "123", reason: ReasonMalformedInput},
		{name: "too long", code: "3245500", reason: ReasonMalformedInput},
		{name: "empty", code: "", reason: ReasonMalformedInput},
		{name: "leading space", code: " 324550", reason: ReasonMalformedInput},
		{name: "trailing newline", code: "324550\n", reason: ReasonMalformedInput},
		{name: "full width digits", code: "３２４５５０", reason: ReasonMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := engine.Verify(demoSecret, tt.code, t0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.drift, got.Drift)
			assert.Equal(t, demoSecret, got.Secret.Canonical)
		})
	}
}

func TestTOTP_Verify_RoundTrip(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	secrets := []string{demoSecret, " jbsw y3dp ehpk 3pxp ", "not base32 at all!", "", "12345678901234567890"}

	for _, secret := range secrets {
		gen, err := engine.GenerateCode(secret, t0)
		require.NoError(t, err)

		for _, delta := range []time.Duration{-30 * time.Second, -10 * time.Second, 0, 9 * time.Second, 30 * time.Second} {
			res, err := engine.Verify(secret, gen.Code, t0.Add(delta))
			require.NoError(t, err)
			assert.True(t, res.Valid, "secret %q delta %s", secret, delta)
			assert.Equal(t, gen.Secret, res.Secret)
		}
	}
}

func TestTOTP_Verify_OutsideWindow(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	old, err := engine.GenerateCode(demoSecret, t0.Add(-61*time.Second))
	require.NoError(t, err)

	res, err := engine.Verify(demoSecret, old.Code, t0)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, ReasonMismatch, res.Reason)
}

func TestTOTP_Verify_ZeroSkew(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(c *Config) { c.Skew = 0 })

	res, err := engine.Verify(demoSecret, "324550", t0)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = engine.Verify(demoSecret, "822542", t0)
	require.NoError(t, err)
	assert.Equal(t, ReasonMismatch, res.Reason)
}

func TestTOTP_Verify_NearEpoch(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	// The window at step zero has no previous step.
	res, err := engine.Verify(demoSecret, "282760", time.Unix(5, 0))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.Drift)
}

func TestTOTP_Concurrent(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := engine.Verify(demoSecret, "324550", t0)
			if err != nil {
				errs <- err
				return
			}
			if !res.Valid {
				errs <- errors.New("expected match")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestTOTP_Verify_TimingIndependentOfMismatchPosition(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	engine := newEngine(t)

	// Both differ from every code in the window; the first at position 0,
	// the second only at the last position of the current code.
	early := "924550"
	late := "324551"

	const rounds = 3000
	earlyDur := make([]time.Duration, 0, rounds)
	lateDur := make([]time.Duration, 0, rounds)

	measure := func(code string) time.Duration {
		start := time.Now()
		res, err := engine.Verify(demoSecret, code, t0)
		elapsed := time.Since(start)
		require.NoError(t, err)
		require.False(t, res.Valid)
		return elapsed
	}

	for i := 0; i < rounds; i++ {
		earlyDur = append(earlyDur, measure(early))
		lateDur = append(lateDur, measure(late))
	}

	ratio := float64(median(lateDur)) / float64(median(earlyDur))
	assert.InDelta(t, 1.0, ratio, 0.5, "median latency ratio late/early = %.3f", ratio)
}

func median(ds []time.Duration) time.Duration {
	sorted := append([]time.Duration(nil), ds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)/2]
}
