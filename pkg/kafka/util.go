// Package kafka provides shared Kafka utilities for the alert hub.
package kafka

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	// MaxPollWait is the maximum time a reader waits for new data.
	MaxPollWait = 500 * time.Millisecond
	// CommitInterval is how often consumed offsets are flushed to the broker.
	// Offsets are still committed explicitly after processing; this only
	// bounds the background flush.
	CommitInterval = time.Second
	// WriteTimeout bounds a single synchronous produce call.
	WriteTimeout = 10 * time.Second
)

// ParseBrokers parses a comma-separated broker list and trims whitespace.
// Returns a slice of broker addresses.
func ParseBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}
	return brokerList
}

// ValidateConsumerParams validates common consumer parameters.
// Returns an error if any parameter is invalid.
func ValidateConsumerParams(brokers, topic, groupID string) error {
	if brokers == "" {
		return fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return fmt.Errorf("groupID cannot be empty")
	}
	return nil
}

// ValidateProducerParams validates common producer parameters.
// Returns an error if any parameter is invalid.
func ValidateProducerParams(brokers, topic string) error {
	if brokers == "" {
		return fmt.Errorf("brokers cannot be empty")
	}
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	return nil
}

// NewReaderConfig creates a standard Kafka reader configuration for
// at-least-once delivery. This configuration is shared across all consumers
// in the hub.
func NewReaderConfig(brokers []string, topic, groupID string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,    // Return immediately when any data is available
		MaxBytes:       10e6, // 10MB
		MaxWait:        MaxPollWait,
		CommitInterval: CommitInterval,
		StartOffset:    kafka.FirstOffset, // Start from beginning if no committed offset
	}
}

// LogReaderConfig logs the reader configuration values.
// Call this after creating a reader so services log the centralized values.
func LogReaderConfig(topic string) {
	slog.Info("Kafka consumer configured",
		"topic", topic,
		"min_bytes", 1,
		"max_bytes", int(10e6),
		"max_wait", MaxPollWait.String(),
		"commit_interval", CommitInterval.String(),
	)
}
