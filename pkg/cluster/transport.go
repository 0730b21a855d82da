package cluster

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Transport moves encoded lines between relay instances.
type Transport interface {
	// Publish sends payload to every instance, including this one.
	Publish(ctx context.Context, payload []byte) error
	// Subscribe returns a stream of payloads published by any instance. The
	// stream is closed when ctx is cancelled or the subscription breaks.
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// RedisTransport is a Transport over a Redis pub/sub channel.
type RedisTransport struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisTransport returns a transport publishing to and subscribing from
// the given Redis channel.
func NewRedisTransport(client redis.UniversalClient, channel string) *RedisTransport {
	return &RedisTransport{client: client, channel: channel}
}

func (t *RedisTransport) Publish(ctx context.Context, payload []byte) error {
	return t.client.Publish(ctx, t.channel, payload).Err()
}

func (t *RedisTransport) Subscribe(ctx context.Context) (<-chan []byte, error) {
	ps := t.client.Subscribe(ctx, t.channel)
	// Wait for the subscription to be confirmed so nothing published after
	// Subscribe returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
