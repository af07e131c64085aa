package broker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisThreadBroker implements ThreadBroker on redis pub/sub, one
// channel per gig thread.
type RedisThreadBroker struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisThreadBroker(redisURL string) (*RedisThreadBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisThreadBroker{
		client: client,
		ctx:    ctx,
	}, nil
}

// Client exposes the underlying redis client so other redis consumers
// (the rate limiter) can share one connection pool.
func (r *RedisThreadBroker) Client() *redis.Client {
	return r.client
}

func channelFor(gigID string) string {
	return "gig:" + gigID + ":messages"
}

func (r *RedisThreadBroker) Publish(event ThreadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, channelFor(event.GigID), data).Err()
}

func (r *RedisThreadBroker) Subscribe(ctx context.Context, gigID string) (<-chan ThreadEvent, func(), error) {
	pubsub := r.client.Subscribe(ctx, channelFor(gigID))

	// Confirm the subscription before handing out the channel
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	eventChan := make(chan ThreadEvent, 100)

	go func() {
		defer close(eventChan)

		for redisMsg := range pubsub.Channel() {
			var event ThreadEvent
			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				continue
			}

			select {
			case eventChan <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		pubsub.Close()
	}

	return eventChan, cancel, nil
}

func (r *RedisThreadBroker) Close() error {
	return r.client.Close()
}
