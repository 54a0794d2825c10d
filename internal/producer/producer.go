// Package producer provides Kafka producers for the alert-created,
// user-alert and dead-letter topics.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
	kafkautil "github.com/Team-SSOK/ssom-backend-sub001/pkg/kafka"
)

// Producer wraps a Kafka writer and publishes pipeline events.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer with the specified brokers and
// topic, configured for at-least-once delivery with synchronous writes.
func NewProducer(brokers string, topic string) (*Producer, error) {
	if err := kafkautil.ValidateProducerParams(brokers, topic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
	)

	// Hash balancer gives key-based partitioning so events for the same key
	// land on the same partition.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: kafkautil.WriteTimeout,
		RequiredAcks: kafka.RequireOne, // At-least-once semantics (waits for leader ack)
		Async:        false,            // Synchronous writes for reliability and error handling
		Compression:  kafka.Snappy,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}, nil
}

// publish writes one keyed JSON message synchronously.
func (p *Producer) publish(ctx context.Context, key string, value any, headers []kafka.Header) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
		Time:    time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// PublishAlertCreated publishes an AlertCreated event keyed by alert ID.
// Call this only after the alert row is durably committed.
func (p *Producer) PublishAlertCreated(ctx context.Context, created *events.AlertCreated) error {
	headers := []kafka.Header{
		{Key: "schema_version", Value: []byte(strconv.Itoa(created.SchemaVersion))},
	}
	if err := p.publish(ctx, created.AlertID, created, headers); err != nil {
		slog.Error("Failed to publish alert created event",
			"alert_id", created.AlertID,
			"topic", p.topic,
			"error", err,
		)
		return err
	}

	slog.Info("Published alert created event",
		"alert_id", created.AlertID,
		"kind", created.Kind,
	)
	return nil
}

// PublishUserAlert publishes a UserAlert event keyed by user ID so one
// user's deliveries stay on one partition.
func (p *Producer) PublishUserAlert(ctx context.Context, ua *events.UserAlert) error {
	headers := []kafka.Header{
		{Key: "schema_version", Value: []byte(strconv.Itoa(ua.SchemaVersion))},
		{Key: "alert_id", Value: []byte(ua.AlertID)},
	}
	if err := p.publish(ctx, ua.UserID, ua, headers); err != nil {
		slog.Error("Failed to publish user alert event",
			"alert_id", ua.AlertID,
			"user_id", ua.UserID,
			"topic", p.topic,
			"error", err,
		)
		return err
	}

	slog.Debug("Published user alert event",
		"alert_id", ua.AlertID,
		"user_id", ua.UserID,
	)
	return nil
}

// Close gracefully closes the Kafka writer and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	return nil
}
