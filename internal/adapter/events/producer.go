// Package events publishes activity records to a Kafka-compatible stream.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/domain"
)

// Producer mirrors activity records to a topic. Delivery is best effort; the
// request path never blocks on the broker.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the seed brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1_000_000),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	slog.Info("activity producer created", slog.Any("brokers", brokers), slog.String("topic", topic))
	return &Producer{client: client, topic: topic}, nil
}

// PublishActivity produces one activity record, keyed by user id. The produce
// is async; broker failures are logged and counted, never surfaced.
func (p *Producer) PublishActivity(ctx domain.Context, a domain.Activity) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("op=events.publish: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(a.UserID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			observability.ActivityPublishFailures.Inc()
			slog.Warn("activity publish failed",
				slog.String("activity_id", a.ID),
				slog.String("type", string(a.Type)),
				slog.Any("error", err))
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Producer) Close() {
	p.client.Close()
}
