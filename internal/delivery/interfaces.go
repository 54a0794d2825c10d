// Package delivery consumes user-alert events and delivers them to the
// user's live streams, falling back to a device push when no stream
// accepts the alert.
package delivery

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// MessageReader reads user-alert messages from the bus.
type MessageReader interface {
	ReadUserAlert(ctx context.Context) (*events.UserAlert, *kafka.Message, error)
	CommitMessage(ctx context.Context, msg *kafka.Message) error
}

// AlertGetter loads the canonical alert for a delivery event.
type AlertGetter interface {
	GetAlert(ctx context.Context, alertID string) (*alert.Alert, error)
}

// StreamPusher is the live-connection registry surface delivery needs.
type StreamPusher interface {
	// Push delivers the view to every open stream whose filters match and
	// returns the delivered count. Zero means the push fallback applies.
	Push(userID string, view alert.View) int
}

// TokenGetter looks up the user's current device token.
type TokenGetter interface {
	Get(ctx context.Context, userID string) (string, bool, error)
}

// PushSender sends one push notification through the gateway.
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) (string, error)
}

// DeadLetterer routes exhausted messages to the dead-letter topic.
type DeadLetterer interface {
	Publish(ctx context.Context, failed *kafka.Message, reason string) error
}

// MetricsRecorder records processing metrics.
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
