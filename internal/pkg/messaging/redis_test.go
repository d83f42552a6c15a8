package messaging

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedis_PublishIntegration(t *testing.T) {
	if os.Getenv("OTPGATE_INTEGRATION") != "1" {
		t.Skip("set OTPGATE_INTEGRATION=1 to run broker integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, testcontainers.TerminateContainer(ctr))
	})

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	pub, err := NewRedis(ctx, RedisConfig{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, pub.Close()) })

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	sub := redis.NewClient(opt).Subscribe(ctx, "totp_verification")
	t.Cleanup(func() { assert.NoError(t, sub.Close()) })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	res, err := pub.Publish(ctx, "totp_verification", OutgoingMessage{Body: []byte(`{"valid":true}`)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Receivers)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"valid":true}`, msg.Payload)

	require.NoError(t, pub.Close())
	_, err = pub.Publish(ctx, "totp_verification", OutgoingMessage{Body: []byte("x")})
	assert.ErrorIs(t, err, ErrClosed)
}
