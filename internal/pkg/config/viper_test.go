package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: otpgate
  server:
    cors: "https://a.example, ,https://b.example"
totp:
  period_seconds: 60
  skew: 2
  digits: 8
instrument:
  enabled: true
  trace_sample_ratio: 0.25
  log_mask_fields:
    - secret
    - " code "
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample), map[string]any{
		"totp.epoch_unix":  int64(0),
		"totp.digits":      6,
		"messaging.driver": "noop",
	})
	require.NoError(t, err)

	assert.Equal(t, "otpgate", cfg.GetString("app.name"))
	assert.Equal(t, 60*time.Second, cfg.GetSecond("totp.period_seconds"))
	assert.Equal(t, uint(2), cfg.GetUint("totp.skew"))
	assert.Equal(t, 8, cfg.GetInt("totp.digits"), "file overrides default")
	assert.Equal(t, int64(0), cfg.GetInt64("totp.epoch_unix"))
	assert.Equal(t, "noop", cfg.GetString("messaging.driver"))
	assert.True(t, cfg.GetBool("instrument.enabled"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetArray("app.server.cors"))
	assert.Equal(t, []string{"secret", "code"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Nil(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_EnvOverride(t *testing.T) {
	t.Setenv("OTPGATE_TOTP_SKEW", "3")
	t.Setenv("OTPGATE_APP_SERVER_CORS", "https://env.example")

	cfg, err := NewViperFromBytes("yaml", []byte(sample), nil)
	require.NoError(t, err)

	assert.Equal(t, uint(3), cfg.GetUint("totp.skew"))
	assert.Equal(t, []string{"https://env.example"}, cfg.GetArray("app.server.cors"))
}

func TestNewViperFromBytes_Errors(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sample), nil)
	assert.ErrorIs(t, err, ErrConfigTypeRequired)

	_, err = NewViperFromBytes("yaml", []byte("totp: [unterminated"), nil)
	assert.Error(t, err)
}

func TestNewViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	cfg, err := NewViper(file, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.GetInt("totp.digits"))
}

func TestNewViper_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"), map[string]any{"totp.digits": 6})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.GetInt("totp.digits"))
}
