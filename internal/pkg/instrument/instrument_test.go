package instrument

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProviders_Shutdown(t *testing.T) {
	t.Parallel()

	errTrace := errors.New("trace flush failed")
	errLog := errors.New("log flush failed")

	var order []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}

	p := &providers{shutdown: []func(context.Context) error{
		step("trace", errTrace),
		step("metric", nil),
		step("log", errLog),
	}}

	err := p.Shutdown(context.Background())
	assert.ErrorIs(t, err, errTrace)
	assert.ErrorIs(t, err, errLog)
	assert.Equal(t, []string{"trace", "metric", "log"}, order)
}

func TestClampRatio(t *testing.T) {
	t.Parallel()

	tests := map[float64]float64{-0.5: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1}
	for in, want := range tests {
		assert.InDelta(t, want, clampRatio(in), 1e-9, "ratio %v", in)
	}
}

func TestMetricsInterval(t *testing.T) {
	t.Parallel()

	assert.Equal(t, defaultMetricsInterval, metricsInterval(0))
	assert.Equal(t, defaultMetricsInterval, metricsInterval(-time.Second))
	assert.Equal(t, 15*time.Second, metricsInterval(15*time.Second))
}
