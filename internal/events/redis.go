package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix namespaces the pub/sub channels.
const DefaultChannelPrefix = "interviews"

// RedisPublisher publishes each event on "<prefix>:<type>".
type RedisPublisher struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisPublisher wraps a connected client.
func NewRedisPublisher(rdb redis.UniversalClient, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the channel an event type is published on.
func (p *RedisPublisher) Channel(t Type) string {
	return p.prefix + ":" + string(t)
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(event.Type), payload).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}

// Subscribe listens to the given event types and decodes payloads onto the
// returned channel until ctx is done. Malformed payloads are skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, types ...Type) (<-chan Event, error) {
	channels := make([]string, len(types))
	for i, t := range types {
		channels[i] = p.Channel(t)
	}
	sub := p.rdb.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("events: subscribe: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
