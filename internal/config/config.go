// Package config provides configuration parsing and validation for the
// alert hub.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration parameters for the hub.
type Config struct {
	HTTPPort string

	KafkaBrokers      string
	AlertCreatedTopic string
	UserAlertTopic    string
	DLQTopic          string
	FanoutGroupID     string
	DeliveryGroupID   string
	TopicPartitions   int

	PostgresDSN string
	RedisAddr   string

	PushGatewayURL string
	TokenTTL       time.Duration

	PruneInterval time.Duration
	StatsInterval time.Duration
	StreamMaxIdle time.Duration
}

// Validate checks that all required configuration fields are set and have
// valid values. Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http-port cannot be empty")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.AlertCreatedTopic == "" {
		return fmt.Errorf("alert-created-topic cannot be empty")
	}
	if c.UserAlertTopic == "" {
		return fmt.Errorf("user-alert-topic cannot be empty")
	}
	if c.DLQTopic == "" {
		return fmt.Errorf("alert-dlq-topic cannot be empty")
	}
	if c.FanoutGroupID == "" {
		return fmt.Errorf("fanout-group-id cannot be empty")
	}
	if c.DeliveryGroupID == "" {
		return fmt.Errorf("delivery-group-id cannot be empty")
	}
	if c.TopicPartitions <= 0 {
		return fmt.Errorf("topic-partitions must be positive")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("redis-addr cannot be empty")
	}
	if c.PushGatewayURL == "" {
		return fmt.Errorf("push-gateway-url cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token-ttl must be positive")
	}
	if c.PruneInterval <= 0 {
		return fmt.Errorf("prune-interval must be positive")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("stats-interval must be positive")
	}
	if c.StreamMaxIdle < 0 {
		return fmt.Errorf("stream-max-idle cannot be negative")
	}
	return nil
}
