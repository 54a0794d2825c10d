package delivery

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/database"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

// defaultWorkerCount bounds delivery parallelism.
const defaultWorkerCount = 10

// work is one unit for the worker pool.
type work struct {
	ua  *events.UserAlert
	msg *kafka.Message
}

// Processor consumes user-alert events and delivers them. Re-delivery of a
// stream or push message is harmless (at most a duplicate notification),
// which is the accepted trade-off for at-least-once semantics.
type Processor struct {
	reader  MessageReader
	alerts  AlertGetter
	streams StreamPusher
	tokens  TokenGetter
	pusher  PushSender
	dlq     DeadLetterer
	metrics MetricsRecorder
	workers int
}

// NewProcessor creates a delivery processor with no-op metrics.
func NewProcessor(reader MessageReader, alerts AlertGetter, streams StreamPusher, tokens TokenGetter, pusher PushSender, dlq DeadLetterer) *Processor {
	return &Processor{
		reader:  reader,
		alerts:  alerts,
		streams: streams,
		tokens:  tokens,
		pusher:  pusher,
		dlq:     dlq,
		metrics: NoOpMetrics{},
		workers: defaultWorkerCount,
	}
}

// WithMetrics sets the metrics recorder. Nil keeps the no-op implementation.
func (p *Processor) WithMetrics(m MetricsRecorder) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// WithWorkers overrides the worker pool size.
func (p *Processor) WithWorkers(n int) *Processor {
	if n > 0 {
		p.workers = n
	}
	return p
}

// Run reads user-alert events and processes them concurrently until the
// context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	slog.Info("Starting delivery processing loop", "workers", p.workers)

	jobs := make(chan work, p.workers*2)
	var wg sync.WaitGroup

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				p.processOne(ctx, job.ua, job.msg)
			}
		}()
	}

	p.dispatch(ctx, jobs)

	close(jobs)
	wg.Wait()
	slog.Info("Delivery processing loop stopped")
	return nil
}

// dispatch reads messages from the bus and hands them to workers.
func (p *Processor) dispatch(ctx context.Context, jobs chan<- work) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			ua, msg, err := p.reader.ReadUserAlert(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if msg != nil {
					p.metrics.RecordError()
					if p.deadLetter(ctx, msg, err.Error()) {
						p.commit(ctx, msg)
					}
					continue
				}
				slog.Error("Failed to read user alert event", "error", err)
				continue
			}
			p.metrics.RecordReceived()
			jobs <- work{ua: ua, msg: msg}
		}
	}
}

// processOne delivers a single user alert: load, push to streams or fall
// back to a device push, commit.
func (p *Processor) processOne(ctx context.Context, ua *events.UserAlert, msg *kafka.Message) {
	startTime := time.Now()

	a, err := p.alerts.GetAlert(ctx, ua.AlertID)
	if err != nil {
		p.metrics.RecordError()
		if errors.Is(err, database.ErrAlertNotFound) {
			// Alert was deleted between fan-out and delivery; terminal.
			if p.deadLetter(ctx, msg, err.Error()) {
				p.commit(ctx, msg)
			}
			return
		}
		slog.Error("Failed to fetch alert for delivery",
			"alert_id", ua.AlertID,
			"user_id", ua.UserID,
			"error", err,
		)
		// Transient: leave uncommitted so the broker redelivers.
		return
	}

	view := alert.ViewFromAlert(a)

	// The registry only counts streams whose filters match this alert; a
	// user whose open streams all filter it out still gets the fallback.
	if delivered := p.streams.Push(ua.UserID, view); delivered > 0 {
		p.metrics.IncrementCustom("delivered_via_stream")
		slog.Debug("Pushed alert to live streams",
			"alert_id", ua.AlertID,
			"user_id", ua.UserID,
			"streams", delivered,
		)
	} else {
		p.sendFallback(ctx, ua, a)
	}

	p.metrics.RecordProcessed(time.Since(startTime))
	p.commit(ctx, msg)
}

// sendFallback sends a device push when no live stream accepted the alert.
// Best-effort: a missing token means the user simply isn't pushed, and
// gateway failures never fail the pipeline.
func (p *Processor) sendFallback(ctx context.Context, ua *events.UserAlert, a *alert.Alert) {
	deviceToken, ok, err := p.tokens.Get(ctx, ua.UserID)
	if err != nil {
		slog.Warn("Failed to look up device token",
			"user_id", ua.UserID,
			"error", err,
		)
		return
	}
	if !ok {
		p.metrics.IncrementCustom("fallback_no_token")
		return
	}

	data := map[string]string{
		"alert_id": ua.AlertID,
		"kind":     a.Kind.String(),
	}
	if _, err := p.pusher.Send(ctx, deviceToken, a.Title, a.Message, data); err != nil {
		slog.Warn("Push gateway send failed",
			"alert_id", ua.AlertID,
			"user_id", ua.UserID,
			"error", err,
		)
		p.metrics.IncrementCustom("push_gateway_failures")
		return
	}

	p.metrics.IncrementCustom("delivered_via_push")
	slog.Debug("Sent fallback push notification",
		"alert_id", ua.AlertID,
		"user_id", ua.UserID,
	)
}

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
	}
}
