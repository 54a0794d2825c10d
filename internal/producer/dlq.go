package producer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	kafkautil "github.com/Team-SSOK/ssom-backend-sub001/pkg/kafka"
)

// DLQ publishes messages that exhausted processing to the dead-letter topic.
// Dead-lettered messages are retained for manual inspection and never
// auto-replayed.
type DLQ struct {
	writer *kafka.Writer
	topic  string
}

// NewDLQ creates a dead-letter producer for the given topic.
func NewDLQ(brokers string, topic string) (*DLQ, error) {
	if err := kafkautil.ValidateProducerParams(brokers, topic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing dead-letter producer",
		"brokers", brokerList,
		"topic", topic,
	)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: kafkautil.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &DLQ{writer: writer, topic: topic}, nil
}

// Publish copies the failed message to the dead-letter topic, annotated with
// its origin and the failure reason.
func (d *DLQ) Publish(ctx context.Context, failed *kafka.Message, reason string) error {
	msg := kafka.Message{
		Key:   failed.Key,
		Value: failed.Value,
		Headers: append(failed.Headers,
			kafka.Header{Key: "dlq_original_topic", Value: []byte(failed.Topic)},
			kafka.Header{Key: "dlq_original_partition", Value: []byte(strconv.Itoa(failed.Partition))},
			kafka.Header{Key: "dlq_original_offset", Value: []byte(strconv.FormatInt(failed.Offset, 10))},
			kafka.Header{Key: "dlq_failure_reason", Value: []byte(reason)},
		),
		Time: time.Now(),
	}

	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to dead-letter topic: %w", err)
	}

	slog.Warn("Dead-lettered message",
		"original_topic", failed.Topic,
		"original_offset", failed.Offset,
		"reason", reason,
	)
	return nil
}

// Close gracefully closes the dead-letter writer.
func (d *DLQ) Close() error {
	slog.Info("Closing dead-letter producer", "topic", d.topic)
	return d.writer.Close()
}
