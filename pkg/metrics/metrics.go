// Package metrics provides a shared metrics collection and reporting system.
// Components write metrics to Redis for centralized access.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix is the Redis key prefix for component metrics.
	KeyPrefix = "metrics:"
	// TTL is how long metrics stay in Redis if not refreshed.
	TTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// Snapshot holds metrics for a single component.
type Snapshot struct {
	Component   string    `json:"component"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`
	Status      string    `json:"status"` // "healthy" or "unhealthy"

	// Counters (monotonically increasing since start)
	MessagesReceived  uint64 `json:"messages_received"`
	MessagesProcessed uint64 `json:"messages_processed"`
	MessagesPublished uint64 `json:"messages_published"`
	ProcessingErrors  uint64 `json:"processing_errors"`

	// Rates (per report interval)
	MessagesPerSecond float64 `json:"messages_per_second"`

	// Latencies (averages in nanoseconds)
	AvgProcessingLatencyNs float64 `json:"avg_processing_latency_ns"`

	// Component-specific counters and gauges (flexible maps)
	CustomCounters map[string]uint64  `json:"custom_counters,omitempty"`
	Gauges         map[string]float64 `json:"gauges,omitempty"`
}

// Collector collects and reports metrics for a component.
type Collector struct {
	component      string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	messagesReceived  atomic.Uint64
	messagesProcessed atomic.Uint64
	messagesPublished atomic.Uint64
	processingErrors  atomic.Uint64

	// For rate calculation
	lastReportTime     time.Time
	lastProcessedCount uint64

	// Latency tracking
	totalLatencyNs atomic.Uint64
	latencyCount   atomic.Uint64

	customMu       sync.RWMutex
	customCounters map[string]*atomic.Uint64
	gauges         map[string]*atomic.Uint64 // float64 bits

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCollector creates a new metrics collector for a component.
func NewCollector(component string, redisClient *redis.Client) *Collector {
	return &Collector{
		component:      component,
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		lastReportTime: time.Now().UTC(),
		customCounters: make(map[string]*atomic.Uint64),
		gauges:         make(map[string]*atomic.Uint64),
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

// RecordReceived increments the messages received counter.
func (c *Collector) RecordReceived() {
	c.messagesReceived.Add(1)
}

// RecordProcessed increments the messages processed counter with latency.
func (c *Collector) RecordProcessed(latency time.Duration) {
	c.messagesProcessed.Add(1)
	c.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	c.latencyCount.Add(1)
}

// RecordPublished increments the messages published counter.
func (c *Collector) RecordPublished() {
	c.messagesPublished.Add(1)
}

// RecordError increments the processing errors counter.
func (c *Collector) RecordError() {
	c.processingErrors.Add(1)
}

// IncrementCustom increments a custom counter by name.
func (c *Collector) IncrementCustom(name string) {
	c.counter(name).Add(1)
}

// AddCustom adds a value to a custom counter.
func (c *Collector) AddCustom(name string, value uint64) {
	c.counter(name).Add(value)
}

// SetGauge records an instantaneous value, such as the live stream count.
func (c *Collector) SetGauge(name string, value float64) {
	c.customMu.RLock()
	g, exists := c.gauges[name]
	c.customMu.RUnlock()

	if !exists {
		c.customMu.Lock()
		if g, exists = c.gauges[name]; !exists {
			g = &atomic.Uint64{}
			c.gauges[name] = g
		}
		c.customMu.Unlock()
	}
	g.Store(math.Float64bits(value))
}

func (c *Collector) counter(name string) *atomic.Uint64 {
	c.customMu.RLock()
	counter, exists := c.customCounters[name]
	c.customMu.RUnlock()

	if !exists {
		c.customMu.Lock()
		// Double-check after acquiring write lock
		if counter, exists = c.customCounters[name]; !exists {
			counter = &atomic.Uint64{}
			c.customCounters[name] = counter
		}
		c.customMu.Unlock()
	}
	return counter
}

// GetSnapshot returns current metrics without writing to Redis.
func (c *Collector) GetSnapshot() *Snapshot {
	now := time.Now().UTC()
	processed := c.messagesProcessed.Load()

	elapsed := now.Sub(c.lastReportTime).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(processed-c.lastProcessedCount) / elapsed
	}

	var avgLatencyNs float64
	latencyCount := c.latencyCount.Load()
	if latencyCount > 0 {
		avgLatencyNs = float64(c.totalLatencyNs.Load()) / float64(latencyCount)
	}

	c.customMu.RLock()
	customCounters := make(map[string]uint64, len(c.customCounters))
	for name, counter := range c.customCounters {
		customCounters[name] = counter.Load()
	}
	gauges := make(map[string]float64, len(c.gauges))
	for name, g := range c.gauges {
		gauges[name] = math.Float64frombits(g.Load())
	}
	c.customMu.RUnlock()

	return &Snapshot{
		Component:              c.component,
		StartedAt:              c.startedAt,
		LastUpdated:            now,
		Status:                 "healthy",
		MessagesReceived:       c.messagesReceived.Load(),
		MessagesProcessed:      processed,
		MessagesPublished:      c.messagesPublished.Load(),
		ProcessingErrors:       c.processingErrors.Load(),
		MessagesPerSecond:      rate,
		AvgProcessingLatencyNs: avgLatencyNs,
		CustomCounters:         customCounters,
		Gauges:                 gauges,
	}
}

// writeMetrics writes current metrics to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	if c.redis == nil {
		return
	}

	snapshot := c.GetSnapshot()

	// Update rate calculation state
	c.lastReportTime = snapshot.LastUpdated
	c.lastProcessedCount = snapshot.MessagesProcessed

	// Latency counters are never reset so the all-time average stays visible
	// after burst processing completes.

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal metrics", "component", c.component, "error", err)
		return
	}

	key := KeyPrefix + c.component
	if err := c.redis.Set(ctx, key, data, TTL).Err(); err != nil {
		slog.Error("Failed to write metrics to Redis", "component", c.component, "error", err)
		return
	}

	slog.Debug("Metrics written to Redis", "component", c.component, "key", key)
}

// Reader reads component metrics from Redis.
type Reader struct {
	redis *redis.Client
}

// NewReader creates a new metrics reader.
func NewReader(redisClient *redis.Client) *Reader {
	return &Reader{redis: redisClient}
}

// GetComponentMetrics retrieves metrics for a specific component.
func (r *Reader) GetComponentMetrics(ctx context.Context, component string) (*Snapshot, error) {
	key := KeyPrefix + component
	data, err := r.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("no metrics found for component: %s", component)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}

	// Check if metrics are stale (older than TTL)
	if time.Since(snapshot.LastUpdated) > TTL {
		snapshot.Status = "unhealthy"
	}

	return &snapshot, nil
}

// ComponentNames is the list of known hub components.
var ComponentNames = []string{
	"api",
	"fanout",
	"delivery",
	"janitor",
}

// GetAllComponentMetrics retrieves the latest snapshot for every known
// component. Components that have not reported yet are omitted.
func (r *Reader) GetAllComponentMetrics(ctx context.Context) (map[string]*Snapshot, error) {
	result := make(map[string]*Snapshot, len(ComponentNames))
	for _, component := range ComponentNames {
		snapshot, err := r.GetComponentMetrics(ctx, component)
		if err != nil {
			slog.Debug("No metrics for component", "component", component, "error", err)
			continue
		}
		result[component] = snapshot
	}

	return result, nil
}
