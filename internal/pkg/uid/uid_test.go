package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	t.Parallel()

	var gen StringID = NewUUID()

	a, b := gen.Generate(), gen.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSnowflake_Generate(t *testing.T) {
	t.Parallel()

	snow, err := NewSnowflake(1)
	require.NoError(t, err)

	var gen NumberID = snow
	prev := gen.Generate()
	for range 100 {
		next := gen.Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewSnowflake_InvalidNode(t *testing.T) {
	t.Parallel()

	_, err := NewSnowflake(1024)
	assert.Error(t, err)

	_, err = NewSnowflake(-1)
	assert.Error(t, err)
}
