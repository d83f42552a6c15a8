package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisURLRequired is returned when neither a client nor a URL is given.
var ErrRedisURLRequired = errors.New("messaging: redis url is required")

// RedisConfig configures Redis pub/sub publishing.
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection string.
	URL string
	// Client reuses an existing client; it is not closed by Close.
	Client *redis.Client
}

// Redis publishes to Redis pub/sub channels. Like NSQ, only the body is sent.
type Redis struct {
	client *redis.Client
	owned  bool

	mu     sync.Mutex
	closed bool
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Client != nil {
		return &Redis{client: cfg.Client}, nil
	}
	if cfg.URL == "" {
		return nil, ErrRedisURLRequired
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("messaging: redis parse url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		//nolint:errcheck // connection already failed
		_ = client.Close()
		return nil, fmt.Errorf("messaging: redis ping: %w", err)
	}

	return &Redis{client: client, owned: true}, nil
}

// Close closes the client when it was created by NewRedis.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

// Publish sends the body to a Redis channel. Redis pub/sub is fire and
// forget: a message with no subscribers is dropped and reports zero receivers.
func (r *Redis) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}
	if r.isClosed() {
		return PublishResult{}, ErrClosed
	}

	n, err := r.client.Publish(ctx, destination, msg.Body).Result()
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: redis publish: %w", err)
	}

	return PublishResult{Topic: destination, Receivers: n, Timestamp: time.Now()}, nil
}

func (r *Redis) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
