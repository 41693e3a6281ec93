package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/campus-event-booking/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes notifications as JSON on a Redis channel so every
// server instance (and any other consumer) sees them.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher connects to addr and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, password, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

// Publish sends n as JSON on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}

// Relay subscribes to the channel and forwards every notification to dst
// until ctx is done. Run it to feed a local Hub from all instances.
func (p *RedisPublisher) Relay(ctx context.Context, dst Publisher, log *slog.Logger) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", p.channel, err)
	}
	log.Info("relaying notifications", "channel", p.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n model.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Warn("invalid notification payload", "err", err)
				continue
			}
			if err := dst.Publish(ctx, n); err != nil {
				log.Warn("relay notification", "kind", n.Kind, "err", err)
			}
		}
	}
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
