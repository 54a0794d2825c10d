// Package handlers provides HTTP handlers for the alert hub API.
package handlers

import (
	"context"
	"time"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/registry"
)

// Repository is the persistence surface the handlers need.
type Repository interface {
	CreateAlert(ctx context.Context, record *alert.Record) (*alert.Alert, error)
	DeleteAlert(ctx context.Context, alertID string) error
	MarkRead(ctx context.Context, statusID, userID string) error
	MarkUnread(ctx context.Context, statusID, userID string) error
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]alert.StatusView, error)
}

// AlertPublisher publishes alert-created events after the durable write.
type AlertPublisher interface {
	PublishAlertCreated(ctx context.Context, created *events.AlertCreated) error
}

// TokenRegistrar stores device push tokens.
type TokenRegistrar interface {
	Register(ctx context.Context, userID, deviceToken string) error
}

// Subscriptions is the live-connection registry surface for the streaming
// endpoint.
type Subscriptions interface {
	Subscribe(userID, appFilter, levelFilter string) *registry.Stream
	Unsubscribe(s *registry.Stream)
}

// MetricsRecorder records HTTP metrics.
type MetricsRecorder interface {
	RecordReceived()
	RecordProcessed(latency time.Duration)
	RecordError()
	IncrementCustom(name string)
}

// NoOpMetrics is a MetricsRecorder that does nothing.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordReceived()                 {}
func (NoOpMetrics) RecordProcessed(_ time.Duration) {}
func (NoOpMetrics) RecordError()                    {}
func (NoOpMetrics) IncrementCustom(_ string)        {}
