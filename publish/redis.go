// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package publish

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/quickly-vote/models"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends ended polls to a Redis pub/sub channel
type RedisPublisher struct {
	client  redisPublisher
	channel string
}

// NewRedisPublisher connects to addr and checks the connection
func NewRedisPublisher(ctx context.Context, addr, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.PollEnded) error {
	data, err := Encode(event)
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish poll %s to redis: %w", event.Poll.ID, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	if c, ok := p.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
