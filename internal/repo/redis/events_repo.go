package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// EventsRepo is the realtime fan-out channel for browser clients.
type EventsRepo struct {
	client *goredis.Client
}

func NewEventsRepo(client *goredis.Client) *EventsRepo {
	return &EventsRepo{client: client}
}

func (r *EventsRepo) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if channel == "" {
		return 0, fmt.Errorf("channel is required")
	}

	receivers, err := r.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish %s: %w", channel, err)
	}
	return receivers, nil
}

// Subscribe returns a confirmed subscription; callers must Close it.
func (r *EventsRepo) Subscribe(ctx context.Context, channel string) (*goredis.PubSub, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	sub := r.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return sub, nil
}

// Stream relays payloads published on channel until ctx is done or stop is called.
func (r *EventsRepo) Stream(ctx context.Context, channel string) (<-chan []byte, func() error, error) {
	sub, err := r.Subscribe(ctx, channel)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
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

	return out, sub.Close, nil
}
