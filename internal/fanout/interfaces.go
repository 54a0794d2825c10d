// Package fanout expands one created alert into per-user delivery events.
package fanout

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// MessageReader reads alert-created messages from the bus.
type MessageReader interface {
	// ReadAlertCreated reads the next message and returns the parsed event.
	// The raw message is returned for offset tracking and dead-lettering.
	ReadAlertCreated(ctx context.Context) (*events.AlertCreated, *kafka.Message, error)

	// CommitMessage commits the offset for the given message.
	CommitMessage(ctx context.Context, msg *kafka.Message) error
}

// UserAlertPublisher publishes per-user delivery events to the bus.
type UserAlertPublisher interface {
	PublishUserAlert(ctx context.Context, ua *events.UserAlert) error
}

// DeadLetterer routes exhausted messages to the dead-letter topic.
type DeadLetterer interface {
	Publish(ctx context.Context, failed *kafka.Message, reason string) error
}

// StatusStorage creates per-user status rows for an alert.
type StatusStorage interface {
	// InsertStatusIdempotent returns the new status ID, or nil if the
	// (alert, user) pair already has one.
	InsertStatusIdempotent(ctx context.Context, alertID, userID string) (*string, error)
}

// Directory resolves user identities from the user-directory collaborator.
type Directory interface {
	AllUserIDs(ctx context.Context) ([]string, error)
	UserIDsByList(ctx context.Context, ids []string) ([]string, error)
}

// MetricsRecorder records processing metrics.
type MetricsRecorder interface {
	RecordReceived()
	RecordProcessed(latency time.Duration)
	RecordPublished()
	RecordError()
	IncrementCustom(name string)
}

// NoOpMetrics is a MetricsRecorder that does nothing.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordReceived()                 {}
func (NoOpMetrics) RecordProcessed(_ time.Duration) {}
func (NoOpMetrics) RecordPublished()                {}
func (NoOpMetrics) RecordError()                    {}
func (NoOpMetrics) IncrementCustom(_ string)        {}
