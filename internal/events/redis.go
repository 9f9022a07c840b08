package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisPublishCloser is the part of *redis.Client the publisher needs
type redisPublishCloser interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher publishes events on a Redis pub/sub channel
type RedisPublisher struct {
	client  redisPublishCloser
	channel string
}

// NewRedisPublisherWithClient publishes through a client owned by the caller.
// Close leaves the client open.
func NewRedisPublisherWithClient(client *redis.Client, channel string) *RedisPublisher {
	return newRedisPublisher(borrowedClient{client}, channel)
}

type borrowedClient struct{ *redis.Client }

func (borrowedClient) Close() error { return nil }

func newRedisPublisher(client redisPublishCloser, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the JSON-encoded event to the channel
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", p.channel, err)
	}
	return nil
}

// Close closes the underlying client
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
