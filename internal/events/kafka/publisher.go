package kafka

import (
	"context"
	"encoding/json"

	"github.com/atelierdecor/portal_backend/internal/events"
	"github.com/segmentio/kafka-go"
)

// Publisher writes ledger events to a Kafka topic as JSON messages keyed by
// client ID so that per-client ordering is preserved.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Kafka-backed events.Publisher.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

var _ events.Publisher = (*Publisher)(nil)

func (p *Publisher) PublishVersionCreated(ctx context.Context, event events.VersionCreated) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ClientID),
		Value: data,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
