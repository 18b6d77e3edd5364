package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChannel is the pub/sub channel recipe changes are announced on
const RedisChannel = "chefai:recipes:changed"

// RedisNotifier shares change events between processes through Redis pub/sub
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

// NewRedisNotifier creates a notifier on the default recipe channel
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client, channel: RedisChannel}
}

// Publish announces a change to every subscribed process
func (n *RedisNotifier) Publish(ctx context.Context) error {
	if err := n.client.Publish(ctx, n.channel, "changed").Err(); err != nil {
		return fmt.Errorf("failed to publish recipe change: %w", err)
	}
	return nil
}

// Subscribe listens on the recipe channel until ctx is done
func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	pubsub := n.client.Subscribe(ctx, n.channel)

	// Wait for the subscription to be confirmed so no publish is missed afterwards
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.channel, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()

	return out, nil
}

// Close is a no-op; the Redis client is owned by the caller
func (n *RedisNotifier) Close() error {
	return nil
}
