package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// backplaneFrame is the payload published on the Redis channel.
type backplaneFrame struct {
	Origin  string  `json:"origin"`
	Message Message `json:"message"`
}

// RedisBackplane fans broadcasts out over a Redis pub/sub channel.
// Delivery is at most once.
type RedisBackplane struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

var _ Backplane = (*RedisBackplane)(nil)

// NewRedisBackplane connects to redisURL and verifies the connection.
func NewRedisBackplane(ctx context.Context, redisURL, channel string, logger *slog.Logger) (*RedisBackplane, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return newRedisBackplane(ctx, redis.NewClient(opts), channel, logger)
}

func newRedisBackplane(ctx context.Context, rdb *redis.Client, channel string, logger *slog.Logger) (*RedisBackplane, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBackplane{
		rdb:     rdb,
		channel: channel,
		logger:  logger.With(slog.String("component", "relay_backplane"), slog.String("channel", channel)),
	}, nil
}

// Publish implements Backplane.
func (b *RedisBackplane) Publish(ctx context.Context, origin string, msg Message) error {
	payload, err := json.Marshal(backplaneFrame{Origin: origin, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to encode backplane frame: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe implements Backplane. The subscription is confirmed before it
// returns so no message published afterwards is missed.
func (b *RedisBackplane) Subscribe(ctx context.Context, origin string) (<-chan Message, error) {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan Message, 64)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-ch:
				if !ok {
					return
				}

				var frame backplaneFrame
				if err := json.Unmarshal([]byte(raw.Payload), &frame); err != nil {
					backplaneErrors.WithLabelValues("decode").Inc()
					b.logger.Warn("ignoring undecodable backplane frame", slog.String("error", err.Error()))
					continue
				}
				if frame.Origin == origin {
					continue
				}

				select {
				case out <- frame.Message:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	b.logger.Info("subscribed to backplane")
	return out, nil
}

// Close releases the Redis connection.
func (b *RedisBackplane) Close() error {
	return b.rdb.Close()
}
