package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher delivers events to a Kafka topic, keyed by event name so
// events of the same kind preserve order within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// Publish serializes the event to JSON and writes it to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	value, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Name),
		Value: value,
	}); err != nil {
		return errors.Wrap(err, "write event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
