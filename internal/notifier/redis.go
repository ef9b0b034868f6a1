package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/netcinema/booking/internal/domain"
)

// RedisPublisher broadcasts events on a pub/sub channel. Useful for
// single-cluster deployments where the websocket fan-out subscribes directly
// to Redis instead of a broker.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, p.channel, body).Err()
}
