package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// Processor consumes alert-created events, resolves the target user set,
// creates one status row per user (idempotent on the unique (alert, user)
// pair) and publishes one user-alert event per newly created status.
type Processor struct {
	reader    MessageReader
	publisher UserAlertPublisher
	storage   StatusStorage
	resolver  Resolver
	dlq       DeadLetterer
	retryCfg  RetryConfig
	metrics   MetricsRecorder
}

// NewProcessor creates a fan-out processor with no-op metrics.
func NewProcessor(reader MessageReader, publisher UserAlertPublisher, storage StatusStorage, resolver Resolver, dlq DeadLetterer) *Processor {
	return &Processor{
		reader:    reader,
		publisher: publisher,
		storage:   storage,
		resolver:  resolver,
		dlq:       dlq,
		retryCfg:  DefaultRetryConfig(),
		metrics:   NoOpMetrics{},
	}
}

// WithMetrics sets the metrics recorder. Nil keeps the no-op implementation.
func (p *Processor) WithMetrics(m MetricsRecorder) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithRetryConfig overrides the bounded-retry configuration.
func (p *Processor) WithRetryConfig(cfg RetryConfig) *Processor {
	p.retryCfg = cfg
	return p
}

// Run continuously reads alert-created events and fans them out until the
// context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	slog.Info("Starting fan-out processing loop")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Fan-out processing loop stopped")
			return nil
		default:
			created, msg, err := p.reader.ReadAlertCreated(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if msg != nil {
					// Undecodable message: poison, straight to the DLQ.
					p.metrics.RecordError()
					if p.deadLetter(ctx, msg, err.Error()) {
						p.commit(ctx, msg)
					}
					continue
				}
				slog.Error("Failed to read alert created event", "error", err)
				continue
			}

			p.metrics.RecordReceived()

			if !p.processMessage(ctx, created, msg) {
				continue
			}
			p.commit(ctx, msg)
		}
	}
}

// processMessage fans out a single alert. Returns true when the message is
// fully handled (processed or dead-lettered) and its offset may be
// committed.
func (p *Processor) processMessage(ctx context.Context, created *events.AlertCreated, msg *kafka.Message) bool {
	startTime := time.Now()

	userIDs, err := p.resolveUsers(ctx, created)
	if err != nil {
		p.metrics.RecordError()
		if errors.Is(err, ErrNoTargetUsers) {
			// Empty target set is terminal, never retried.
			p.metrics.IncrementCustom("alerts_without_recipients")
			return p.deadLetter(ctx, msg, err.Error())
		}
		slog.Error("Failed to resolve target users",
			"alert_id", created.AlertID,
			"error", err,
		)
		return p.deadLetter(ctx, msg, err.Error())
	}

	slog.Debug("Resolved target users",
		"alert_id", created.AlertID,
		"kind", created.Kind,
		"user_count", len(userIDs),
	)

	for _, userID := range userIDs {
		if !p.fanOutToUser(ctx, created, userID) {
			return p.deadLetter(ctx, msg,
				fmt.Sprintf("fan-out to user %s failed after retries", userID))
		}
	}

	p.metrics.RecordProcessed(time.Since(startTime))
	slog.Info("Fanned out alert",
		"alert_id", created.AlertID,
		"kind", created.Kind,
		"user_count", len(userIDs),
	)
	return true
}

// resolveUsers resolves the target set with bounded retries for transient
// directory failures. ErrNoTargetUsers is terminal and not retried.
func (p *Processor) resolveUsers(ctx context.Context, created *events.AlertCreated) ([]string, error) {
	var userIDs []string
	err := withRetry(ctx, p.retryCfg, "resolve_users_"+created.AlertID, func() error {
		var resolveErr error
		userIDs, resolveErr = p.resolver.Resolve(ctx, created)
		if errors.Is(resolveErr, ErrNoTargetUsers) {
			// Terminal, do not burn retries on it.
			userIDs = nil
			return nil
		}
		return resolveErr
	})
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: alert %s kind %s", ErrNoTargetUsers, created.AlertID, created.Kind)
	}
	return userIDs, nil
}

// fanOutToUser creates the user's status row and publishes the user-alert
// event. The status insert happens-before the publication; a duplicate
// insert (redelivered AlertCreated) publishes nothing.
func (p *Processor) fanOutToUser(ctx context.Context, created *events.AlertCreated, userID string) bool {
	var statusID *string
	err := withRetry(ctx, p.retryCfg, "insert_status_"+created.AlertID, func() error {
		var insertErr error
		statusID, insertErr = p.storage.InsertStatusIdempotent(ctx, created.AlertID, userID)
		return insertErr
	})
	if err != nil {
		slog.Error("Failed to insert alert status",
			"alert_id", created.AlertID,
			"user_id", userID,
			"error", err,
		)
		p.metrics.RecordError()
		return false
	}

	if statusID == nil {
		// Duplicate delivery absorbed by the unique (alert, user) pair.
		p.metrics.IncrementCustom("statuses_deduplicated")
		return true
	}

	ua := events.NewUserAlert(created.AlertID, userID, *statusID)
	err = withRetry(ctx, p.retryCfg, "publish_user_alert_"+created.AlertID, func() error {
		return p.publisher.PublishUserAlert(ctx, ua)
	})
	if err != nil {
		slog.Error("Failed to publish user alert event",
			"alert_id", created.AlertID,
			"user_id", userID,
			"error", err,
		)
		p.metrics.RecordError()
		return false
	}

	p.metrics.RecordPublished()
	return true
}

// deadLetter routes the message to the dead-letter topic. Returns true when
// the message may be committed; a DLQ write failure leaves the offset
// uncommitted so the broker redelivers.
func (p *Processor) deadLetter(ctx context.Context, msg *kafka.Message, reason string) bool {
	if err := p.dlq.Publish(ctx, msg, reason); err != nil {
		slog.Error("Failed to publish to dead-letter topic", "error", err)
		return false
	}
	p.metrics.IncrementCustom("messages_dead_lettered")
	return true
}

func (p *Processor) commit(ctx context.Context, msg *kafka.Message) {
	if err := p.reader.CommitMessage(ctx, msg); err != nil {
		slog.Error("Failed to commit offset", "error", err)
		// Offset will be committed on the next interval or redelivered.
	}
}
