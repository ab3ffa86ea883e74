// Package redis publishes order events on a redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"store-service/internal/notify"
)

var _ notify.Sink = (*Conf)(nil)

type Conf struct {
	client  *redis.Client
	channel string
}

func NewConf(addr, channel string) *Conf {
	return &Conf{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

func (r *Conf) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Conf) Deliver(ctx context.Context, e notify.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		err = fmt.Errorf("publishing to %s: %w", r.channel, err)
		if notify.DialFailed(err) {
			return notify.NotSent(err)
		}
		return err
	}
	return nil
}

func (r *Conf) Close() error {
	return r.client.Close()
}
