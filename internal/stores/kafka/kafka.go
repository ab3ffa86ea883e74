// Package kafka publishes order events with franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"store-service/internal/notify"
)

var _ notify.Sink = (*Conf)(nil)

type Conf struct {
	client *kgo.Client
	topic  string
}

func NewConf(brokers []string, topic string) (*Conf, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if topic == "" {
		topic = TopicOrderCreated
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &Conf{client: client, topic: topic}, nil
}

// ProduceMessage writes one record and waits for the broker to acknowledge it.
func (k *Conf) ProduceMessage(ctx context.Context, key, value []byte) error {
	rec := &kgo.Record{Topic: k.topic, Key: key, Value: value}
	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		err = fmt.Errorf("producing to %s: %w", k.topic, err)
		if notify.DialFailed(err) {
			return notify.NotSent(err)
		}
		return err
	}
	return nil
}

func (k *Conf) Deliver(ctx context.Context, e notify.Event) error {
	key, value, err := Encode(e)
	if err != nil {
		return err
	}
	return k.ProduceMessage(ctx, key, value)
}

func (k *Conf) Close() {
	k.client.Close()
}
