package metrics

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Collector is the central metrics aggregation point for the gateway.
// It tracks operation, queue, and gateway-level metrics using RateTrackers
// and mirrors the counters into a private Prometheus registry.
type Collector struct {
	operationMetrics sync.Map
	queueMetrics     sync.Map
	failuresByKind   sync.Map // error kind -> *atomic.Int64

	// Gateway-wide rate metrics
	operationRate *RateTracker
	failureRate   *RateTracker
	depthRate     *RateTracker

	totalOperations atomic.Int64
	totalFailures   atomic.Int64
	reconnectCount  atomic.Int64
	queueCount      atomic.Int64

	startedAt time.Time
	prom      *promMetrics
	config    *Config
}

// OperationMetrics tracks statistics for a single gateway operation
type OperationMetrics struct {
	Name      string
	Rate      *RateTracker // Calls per second
	Latency   *LatencyTracker
	Count     atomic.Int64 // Total calls
	Failures  atomic.Int64 // Calls that returned an error
	CreatedAt time.Time

	mu sync.RWMutex
}

// QueueMetrics tracks statistics for a single queue
type QueueMetrics struct {
	Name         string
	DepthRate    *RateTracker // Observed depth over time
	Depth        atomic.Int64 // Last observed message count
	SendCount    atomic.Int64 // Messages sent through the gateway
	ReceiveCount atomic.Int64 // Messages received through the gateway
	lastActivity atomic.Int64 // Unix nanos of the last send or receive
	CreatedAt    time.Time

	mu sync.RWMutex
}

// LastActivity returns the time of the most recent send or receive, or the
// zero time when the queue has seen no traffic.
func (qm *QueueMetrics) LastActivity() time.Time {
	ns := qm.lastActivity.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (qm *QueueMetrics) touch() {
	qm.lastActivity.Store(time.Now().UnixNano())
}

// Config holds configuration for metrics collection
type Config struct {
	Enabled         bool          // Enable/disable metrics collection
	WindowSize      time.Duration // Time window for rate calculations (e.g., 5 minutes)
	MaxSamples      int           // Maximum samples to keep in ring buffer (e.g., 60)
	SamplesInterval uint8         // Interval between samples (e.g., 5 seconds)
	LatencyWindow   int           // Observations retained per operation latency ring
}

// DefaultConfig returns sensible defaults for metrics collection
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		WindowSize:      5 * time.Minute,
		MaxSamples:      60, // One sample per 5 seconds for 5 minutes
		SamplesInterval: 5,
		LatencyWindow:   256,
	}
}

// NewCollector creates a new metrics collector with the given configuration
func NewCollector(config *Config) *Collector {
	if config == nil {
		config = DefaultConfig()
	}
	if config.LatencyWindow < 1 {
		config.LatencyWindow = DefaultConfig().LatencyWindow
	}

	return &Collector{
		operationRate: NewRateTracker(config.WindowSize, config.MaxSamples),
		failureRate:   NewRateTracker(config.WindowSize, config.MaxSamples),
		depthRate:     NewRateTracker(config.WindowSize, config.MaxSamples),

		startedAt: time.Now(),
		prom:      newPromMetrics(),
		config:    config,
	}
}

// ========================================
// Operation Metrics
// ========================================

// RecordOperation records one gateway operation with its duration and
// outcome. An empty errKind marks success; anything else counts as a
// failure of that kind.
func (c *Collector) RecordOperation(op string, duration time.Duration, errKind string) {
	if !c.config.Enabled {
		return
	}

	om := c.getOrCreateOperationMetrics(op)
	om.Count.Add(1)
	om.Latency.Observe(duration)
	c.totalOperations.Add(1)

	outcome := outcomeSuccess
	if errKind != "" {
		outcome = outcomeFailure
		om.Failures.Add(1)
		c.totalFailures.Add(1)
		c.kindCounter(errKind).Add(1)
		c.prom.recordFailure(op, errKind)
	}
	c.prom.recordOperation(op, outcome, duration)
}

// GetOperationMetrics retrieves metrics for a specific operation
func (c *Collector) GetOperationMetrics(op string) *OperationMetrics {
	if value, ok := c.operationMetrics.Load(op); ok {
		return value.(*OperationMetrics)
	}
	return nil
}

// GetAllOperationMetrics returns metrics for all operations
func (c *Collector) GetAllOperationMetrics() []*OperationMetrics {
	result := make([]*OperationMetrics, 0)
	c.operationMetrics.Range(func(key, value interface{}) bool {
		result = append(result, value.(*OperationMetrics))
		return true
	})
	return result
}

// getOrCreateOperationMetrics gets existing or creates new operation metrics
func (c *Collector) getOrCreateOperationMetrics(op string) *OperationMetrics {
	if value, ok := c.operationMetrics.Load(op); ok {
		return value.(*OperationMetrics)
	}

	om := &OperationMetrics{
		Name:      op,
		Rate:      NewRateTracker(c.config.WindowSize, c.config.MaxSamples),
		Latency:   NewLatencyTracker(c.config.LatencyWindow),
		CreatedAt: time.Now(),
	}

	actual, _ := c.operationMetrics.LoadOrStore(op, om)
	return actual.(*OperationMetrics)
}

// sampleOperationMetrics records periodic samples for an operation
func (c *Collector) sampleOperationMetrics(op string) {
	om := c.GetOperationMetrics(op)
	if om == nil {
		return
	}
	om.mu.RLock()
	defer om.mu.RUnlock()
	om.Rate.Record(om.Count.Load())
}

// ========================================
// Queue Metrics
// ========================================

// RecordQueueSend records a message sent to a queue
func (c *Collector) RecordQueueSend(queue string) {
	if !c.config.Enabled {
		return
	}

	qm := c.getOrCreateQueueMetrics(queue)
	qm.SendCount.Add(1)
	qm.touch()
}

// RecordQueueReceive records a message received from a queue
func (c *Collector) RecordQueueReceive(queue string) {
	if !c.config.Enabled {
		return
	}

	qm := c.getOrCreateQueueMetrics(queue)
	qm.ReceiveCount.Add(1)
	qm.touch()
}

// SetQueueDepth records the last observed message count for a queue
func (c *Collector) SetQueueDepth(queue string, depth int64) {
	if !c.config.Enabled {
		return
	}

	qm := c.getOrCreateQueueMetrics(queue)
	qm.Depth.Store(depth)
	c.prom.setQueueDepth(queue, depth)
}

// GetQueueMetrics retrieves metrics for a specific queue
func (c *Collector) GetQueueMetrics(queue string) *QueueMetrics {
	if value, ok := c.queueMetrics.Load(queue); ok {
		return value.(*QueueMetrics)
	}
	return nil
}

// GetAllQueueMetrics returns metrics for all queues
func (c *Collector) GetAllQueueMetrics() []*QueueMetrics {
	result := make([]*QueueMetrics, 0)
	c.queueMetrics.Range(func(key, value interface{}) bool {
		result = append(result, value.(*QueueMetrics))
		return true
	})
	return result
}

// getOrCreateQueueMetrics gets existing or creates new queue metrics
func (c *Collector) getOrCreateQueueMetrics(queue string) *QueueMetrics {
	if value, ok := c.queueMetrics.Load(queue); ok {
		return value.(*QueueMetrics)
	}

	qm := &QueueMetrics{
		Name:      queue,
		DepthRate: NewRateTracker(c.config.WindowSize, c.config.MaxSamples),
		CreatedAt: time.Now(),
	}

	actual, loaded := c.queueMetrics.LoadOrStore(queue, qm)
	if !loaded {
		c.queueCount.Add(1)
	}
	return actual.(*QueueMetrics)
}

// RemoveQueue removes metrics tracking for a queue
func (c *Collector) RemoveQueue(queue string) {
	if _, ok := c.queueMetrics.LoadAndDelete(queue); ok {
		c.queueCount.Add(-1)
	}
	c.prom.removeQueue(queue)
}

// sampleQueueMetrics records periodic samples for a queue
func (c *Collector) sampleQueueMetrics(queue string) {
	qm := c.GetQueueMetrics(queue)
	if qm == nil {
		return
	}
	qm.mu.RLock()
	defer qm.mu.RUnlock()
	qm.DepthRate.Record(qm.Depth.Load())
}

// ========================================
// Gateway Metrics
// ========================================

// RecordReconnect records a connection recovery triggered by a failed
// operation
func (c *Collector) RecordReconnect() {
	if !c.config.Enabled {
		return
	}

	c.reconnectCount.Add(1)
	c.prom.reconnects.Inc()
}

// kindCounter returns the cumulative failure counter for an error kind
func (c *Collector) kindCounter(kind string) *atomic.Int64 {
	if value, ok := c.failuresByKind.Load(kind); ok {
		return value.(*atomic.Int64)
	}
	actual, _ := c.failuresByKind.LoadOrStore(kind, new(atomic.Int64))
	return actual.(*atomic.Int64)
}

// sampleGatewayMetrics records periodic samples of gateway-wide counters
func (c *Collector) sampleGatewayMetrics() {
	c.operationRate.Record(c.totalOperations.Load())
	c.failureRate.Record(c.totalFailures.Load())

	var depth int64
	c.queueMetrics.Range(func(_, value interface{}) bool {
		depth += value.(*QueueMetrics).Depth.Load()
		return true
	})
	c.depthRate.Record(depth)
}

// OperationSnapshot is a point-in-time view of one operation's metrics
type OperationSnapshot struct {
	Name         string  `json:"name"`
	Count        int64   `json:"count"`
	Failures     int64   `json:"failures"`
	Rate         float64 `json:"rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	MaxLatencyMs float64 `json:"max_latency_ms"`
}

// QueueSnapshot is a point-in-time view of one queue's metrics
type QueueSnapshot struct {
	Name         string    `json:"name"`
	Depth        int64     `json:"depth"`
	Sends        int64     `json:"sends"`
	Receives     int64     `json:"receives"`
	LastActivity time.Time `json:"last_activity"`
}

// GatewaySnapshot is a point-in-time view of all gateway metrics, suitable
// for JSON serialization in the overview endpoint
type GatewaySnapshot struct {
	Timestamp       time.Time           `json:"timestamp"`
	UptimeSeconds   float64             `json:"uptime_seconds"`
	TotalOperations int64               `json:"total_operations"`
	TotalFailures   int64               `json:"total_failures"`
	FailuresByKind  map[string]int64    `json:"failures_by_kind"`
	Reconnects      int64               `json:"reconnects"`
	OperationRate   float64             `json:"operation_rate"`
	FailureRate     float64             `json:"failure_rate"`
	QueueCount      int64               `json:"queue_count"`
	TotalDepth      int64               `json:"total_depth"`
	Operations      []OperationSnapshot `json:"operations"`
	Queues          []QueueSnapshot     `json:"queues"`
}

// GetGatewaySnapshot assembles a snapshot of all gateway metrics. Operation
// and queue lists are sorted by name for stable output.
func (c *Collector) GetGatewaySnapshot() *GatewaySnapshot {
	snap := &GatewaySnapshot{
		Timestamp:       time.Now(),
		UptimeSeconds:   time.Since(c.startedAt).Seconds(),
		TotalOperations: c.totalOperations.Load(),
		TotalFailures:   c.totalFailures.Load(),
		FailuresByKind:  make(map[string]int64),
		Reconnects:      c.reconnectCount.Load(),
		OperationRate:   c.operationRate.Rate(),
		FailureRate:     c.failureRate.Rate(),
		QueueCount:      c.queueCount.Load(),
		Operations:      make([]OperationSnapshot, 0),
		Queues:          make([]QueueSnapshot, 0),
	}

	c.failuresByKind.Range(func(key, value interface{}) bool {
		snap.FailuresByKind[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	c.operationMetrics.Range(func(_, value interface{}) bool {
		om := value.(*OperationMetrics)
		avg, max := om.Latency.Stats()
		snap.Operations = append(snap.Operations, OperationSnapshot{
			Name:         om.Name,
			Count:        om.Count.Load(),
			Failures:     om.Failures.Load(),
			Rate:         om.Rate.Rate(),
			AvgLatencyMs: float64(avg) / float64(time.Millisecond),
			MaxLatencyMs: float64(max) / float64(time.Millisecond),
		})
		return true
	})
	sort.Slice(snap.Operations, func(i, j int) bool {
		return snap.Operations[i].Name < snap.Operations[j].Name
	})

	c.queueMetrics.Range(func(_, value interface{}) bool {
		qm := value.(*QueueMetrics)
		depth := qm.Depth.Load()
		snap.TotalDepth += depth
		snap.Queues = append(snap.Queues, QueueSnapshot{
			Name:         qm.Name,
			Depth:        depth,
			Sends:        qm.SendCount.Load(),
			Receives:     qm.ReceiveCount.Load(),
			LastActivity: qm.LastActivity(),
		})
		return true
	})
	sort.Slice(snap.Queues, func(i, j int) bool {
		return snap.Queues[i].Name < snap.Queues[j].Name
	})

	return snap
}

// ========================================
// Sampling & Lifecycle
// ========================================

// StartPeriodicSampling starts a goroutine that samples all metrics at the
// configured interval
func (c *Collector) StartPeriodicSampling() {
	go func() {
		ticker := time.NewTicker(time.Duration(c.config.SamplesInterval) * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			if !c.config.Enabled {
				continue
			}

			c.operationMetrics.Range(func(key, _ interface{}) bool {
				c.sampleOperationMetrics(key.(string))
				return true
			})
			c.queueMetrics.Range(func(key, _ interface{}) bool {
				c.sampleQueueMetrics(key.(string))
				return true
			})
			c.sampleGatewayMetrics()
		}
	}()
}

// Handler returns an http.Handler serving the Prometheus exposition format
// for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return c.prom.handler()
}

// Clear discards all recorded metrics. The collector start time is kept so
// uptime survives a clear.
func (c *Collector) Clear() {
	c.operationMetrics.Range(func(key, _ interface{}) bool {
		c.operationMetrics.Delete(key)
		return true
	})
	c.queueMetrics.Range(func(key, _ interface{}) bool {
		c.queueMetrics.Delete(key)
		return true
	})
	c.failuresByKind.Range(func(key, _ interface{}) bool {
		c.failuresByKind.Delete(key)
		return true
	})

	c.totalOperations.Store(0)
	c.totalFailures.Store(0)
	c.reconnectCount.Store(0)
	c.queueCount.Store(0)

	c.operationRate.Clear()
	c.failureRate.Clear()
	c.depthRate.Clear()

	c.prom.reset()
}

// IsEnabled reports whether metrics collection is active
func (c *Collector) IsEnabled() bool {
	return c.config.Enabled
}
