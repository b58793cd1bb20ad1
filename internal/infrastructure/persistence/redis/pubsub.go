package redis

import (
	"context"

	"github.com/campus-hub/campus-lms/internal/infrastructure/messaging"
)

// PubSubAdapter adapts the Redis client to the event bus transport
// interface so events fan out across worker instances.
type PubSubAdapter struct {
	cache *Cache
}

// NewPubSubAdapter creates an adapter on top of a Cache client.
func NewPubSubAdapter(cache *Cache) *PubSubAdapter {
	return &PubSubAdapter{cache: cache}
}

// Publish sends a message to a channel.
func (a *PubSubAdapter) Publish(ctx context.Context, channel string, message interface{}) error {
	return a.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe subscribes to channels and returns a message stream.
// The stream closes when the context is cancelled.
func (a *PubSubAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	pubsub := a.cache.Client().Subscribe(ctx, channels...)

	// Blocks until the subscription is confirmed by the server.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan messaging.RedisMessage)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- messaging.RedisMessage{
					Channel: msg.Channel,
					Payload: msg.Payload,
				}
			}
		}
	}()

	return out, nil
}

// Close is a no-op: the underlying client is owned by the Cache.
func (a *PubSubAdapter) Close() error {
	return nil
}
