// Package consumer provides Kafka consumers for the alert-created and
// user-alert topics.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
	kafkautil "github.com/Team-SSOK/ssom-backend-sub001/pkg/kafka"
)

// Consumer wraps a Kafka reader configured for at-least-once delivery.
// Offsets are committed explicitly after processing; if the process crashes
// before commit, the message is redelivered.
type Consumer struct {
	reader *kafka.Reader
	topic  string
}

// NewConsumer creates a new Kafka consumer with the specified brokers,
// topic, and group ID.
func NewConsumer(brokers string, topic string, groupID string) (*Consumer, error) {
	if err := kafkautil.ValidateConsumerParams(brokers, topic, groupID); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka consumer",
		"brokers", brokerList,
		"topic", topic,
		"group_id", groupID,
	)

	reader := kafka.NewReader(kafkautil.NewReaderConfig(brokerList, topic, groupID))
	kafkautil.LogReaderConfig(topic)

	return &Consumer{
		reader: reader,
		topic:  topic,
	}, nil
}

// ReadAlertCreated fetches the next message and deserializes it as an
// AlertCreated event. The raw message is returned for offset tracking and
// dead-lettering even when deserialization fails. Fetch, not read: with a
// group ID, ReadMessage commits the offset before the caller has processed
// anything, which would break redelivery of failed messages.
func (c *Consumer) ReadAlertCreated(ctx context.Context) (*events.AlertCreated, *kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch message from Kafka: %w", err)
	}

	var created events.AlertCreated
	if err := json.Unmarshal(msg.Value, &created); err != nil {
		return nil, &msg, fmt.Errorf("failed to unmarshal alert created event: %w", err)
	}

	return &created, &msg, nil
}

// ReadUserAlert fetches the next message and deserializes it as a UserAlert
// event. Uses FetchMessage for the same reason as ReadAlertCreated.
func (c *Consumer) ReadUserAlert(ctx context.Context) (*events.UserAlert, *kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch message from Kafka: %w", err)
	}

	var ua events.UserAlert
	if err := json.Unmarshal(msg.Value, &ua); err != nil {
		return nil, &msg, fmt.Errorf("failed to unmarshal user alert event: %w", err)
	}

	return &ua, &msg, nil
}

// CommitMessage commits the offset for the given message.
// This should be called only after the message is fully handled.
func (c *Consumer) CommitMessage(ctx context.Context, msg *kafka.Message) error {
	return c.reader.CommitMessages(ctx, *msg)
}

// Close gracefully closes the Kafka reader and releases resources.
func (c *Consumer) Close() error {
	slog.Info("Closing Kafka consumer", "topic", c.topic)
	if err := c.reader.Close(); err != nil {
		slog.Error("Error closing Kafka consumer", "error", err)
		return err
	}
	return nil
}
