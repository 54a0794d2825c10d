// Package janitor runs the periodic maintenance tasks that keep the live-
// connection registry bounded under churn. It runs independently of the
// delivery write path and only observes and prunes the registry.
package janitor

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Pruner is the registry surface the janitor needs.
type Pruner interface {
	ActiveCount() int
	EvictIdle(maxIdle time.Duration) int
	PruneDisconnected() (before, after int)
}

// GaugeRecorder publishes health gauges.
type GaugeRecorder interface {
	SetGauge(name string, value float64)
}

// noOpGauges discards gauge writes.
type noOpGauges struct{}

func (noOpGauges) SetGauge(_ string, _ float64) {}

// Janitor owns two independent periodic tasks: a prune sweep and a health
// report. The tasks share nothing beyond the registry they observe, so one
// failing never affects the other.
type Janitor struct {
	registry      Pruner
	gauges        GaugeRecorder
	pruneInterval time.Duration
	statsInterval time.Duration
	maxIdle       time.Duration

	wg sync.WaitGroup
}

// New creates a janitor for the given registry.
// maxIdle of zero disables idle eviction.
func New(registry Pruner, pruneInterval, statsInterval, maxIdle time.Duration) *Janitor {
	return &Janitor{
		registry:      registry,
		gauges:        noOpGauges{},
		pruneInterval: pruneInterval,
		statsInterval: statsInterval,
		maxIdle:       maxIdle,
	}
}

// WithGauges sets the gauge recorder. Nil keeps the no-op implementation.
func (j *Janitor) WithGauges(g GaugeRecorder) *Janitor {
	if g != nil {
		j.gauges = g
	}
	return j
}

// Start launches both periodic tasks. They stop when the context is
// cancelled; call Wait to block until they have drained.
func (j *Janitor) Start(ctx context.Context) {
	j.wg.Add(2)
	go j.runLoop(ctx, "prune", j.pruneInterval, j.pruneSweep)
	go j.runLoop(ctx, "stats", j.statsInterval, j.reportStats)
}

// Wait blocks until both tasks have stopped.
func (j *Janitor) Wait() {
	j.wg.Wait()
}

// runLoop drives one periodic task. Every tick is wrapped against panics:
// a failed sweep must never crash the process or stop subsequent sweeps.
func (j *Janitor) runLoop(ctx context.Context, name string, interval time.Duration, task func()) {
	defer j.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Janitor task started", "task", name, "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("Janitor task stopped", "task", name)
			return
		case <-ticker.C:
			j.runOnce(name, task)
		}
	}
}

func (j *Janitor) runOnce(name string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Janitor task panicked", "task", name, "panic", r)
		}
	}()
	task()
}

// pruneSweep evicts idle streams and erases everything pending removal.
func (j *Janitor) pruneSweep() {
	j.registry.EvictIdle(j.maxIdle)
	before, after := j.registry.PruneDisconnected()
	slog.Info("Pruned live-connection registry",
		"active_before", before,
		"active_after", after,
		"removed", before-after,
	)
}

// reportStats logs the active stream count and process memory usage as a
// coarse health signal.
func (j *Janitor) reportStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	active := j.registry.ActiveCount()
	slog.Info("Live-connection registry stats",
		"active_streams", active,
		"goroutines", runtime.NumGoroutine(),
		"heap_alloc_bytes", memStats.HeapAlloc,
		"heap_objects", memStats.HeapObjects,
	)

	j.gauges.SetGauge("active_streams", float64(active))
	j.gauges.SetGauge("heap_alloc_bytes", float64(memStats.HeapAlloc))
}
