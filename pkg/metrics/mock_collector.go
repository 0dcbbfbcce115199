package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MockCollector is a simple mock implementation of MetricsCollector for testing.
type MockCollector struct {
	mu sync.RWMutex

	// Simplified storage for testing
	operationMetrics map[string]*OperationMetrics
	queueMetrics     map[string]*QueueMetrics
	failuresByKind   map[string]int64

	totalOperations int64
	totalFailures   int64
	reconnects      int64

	enabled bool
}

// NewMockCollector creates a new mock collector.
func NewMockCollector() *MockCollector {
	return &MockCollector{
		operationMetrics: make(map[string]*OperationMetrics),
		queueMetrics:     make(map[string]*QueueMetrics),
		failuresByKind:   make(map[string]int64),
		enabled:          true,
	}
}

// Operation metrics
func (m *MockCollector) RecordOperation(op string, duration time.Duration, errKind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	om, ok := m.operationMetrics[op]
	if !ok {
		om = &OperationMetrics{
			Name:      op,
			Rate:      NewRateTracker(5*time.Minute, 60),
			Latency:   NewLatencyTracker(64),
			CreatedAt: time.Now(),
		}
		m.operationMetrics[op] = om
	}
	om.Count.Add(1)
	om.Latency.Observe(duration)
	m.totalOperations++
	if errKind != "" {
		om.Failures.Add(1)
		m.totalFailures++
		m.failuresByKind[errKind]++
	}
}

func (m *MockCollector) GetOperationMetrics(op string) *OperationMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.operationMetrics[op]
}

func (m *MockCollector) GetAllOperationMetrics() []*OperationMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*OperationMetrics, 0, len(m.operationMetrics))
	for _, om := range m.operationMetrics {
		result = append(result, om)
	}
	return result
}

// Queue metrics
func (m *MockCollector) RecordQueueSend(queue string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLocked(queue).SendCount.Add(1)
}

func (m *MockCollector) RecordQueueReceive(queue string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLocked(queue).ReceiveCount.Add(1)
}

func (m *MockCollector) SetQueueDepth(queue string, depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueLocked(queue).Depth.Store(depth)
}

func (m *MockCollector) GetQueueMetrics(queue string) *QueueMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queueMetrics[queue]
}

func (m *MockCollector) GetAllQueueMetrics() []*QueueMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*QueueMetrics, 0, len(m.queueMetrics))
	for _, qm := range m.queueMetrics {
		result = append(result, qm)
	}
	return result
}

func (m *MockCollector) RemoveQueue(queue string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queueMetrics, queue)
}

// queueLocked returns the queue entry, creating it if needed. Callers hold mu.
func (m *MockCollector) queueLocked(queue string) *QueueMetrics {
	qm, ok := m.queueMetrics[queue]
	if !ok {
		qm = &QueueMetrics{
			Name:      queue,
			DepthRate: NewRateTracker(5*time.Minute, 60),
			CreatedAt: time.Now(),
		}
		m.queueMetrics[queue] = qm
	}
	return qm
}

// Gateway metrics
func (m *MockCollector) RecordReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconnects++
}

// Reconnects returns the recorded reconnect count.
func (m *MockCollector) Reconnects() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reconnects
}

// FailureCount returns the recorded failure count for an error kind.
func (m *MockCollector) FailureCount(kind string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failuresByKind[kind]
}

func (m *MockCollector) GetGatewaySnapshot() *GatewaySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &GatewaySnapshot{
		Timestamp:       time.Now(),
		TotalOperations: m.totalOperations,
		TotalFailures:   m.totalFailures,
		FailuresByKind:  make(map[string]int64, len(m.failuresByKind)),
		Reconnects:      m.reconnects,
		QueueCount:      int64(len(m.queueMetrics)),
		Operations:      make([]OperationSnapshot, 0),
		Queues:          make([]QueueSnapshot, 0),
	}
	for kind, count := range m.failuresByKind {
		snap.FailuresByKind[kind] = count
	}
	for _, om := range m.operationMetrics {
		avg, max := om.Latency.Stats()
		snap.Operations = append(snap.Operations, OperationSnapshot{
			Name:         om.Name,
			Count:        om.Count.Load(),
			Failures:     om.Failures.Load(),
			AvgLatencyMs: float64(avg) / float64(time.Millisecond),
			MaxLatencyMs: float64(max) / float64(time.Millisecond),
		})
	}
	for _, qm := range m.queueMetrics {
		depth := qm.Depth.Load()
		snap.TotalDepth += depth
		snap.Queues = append(snap.Queues, QueueSnapshot{
			Name:     qm.Name,
			Depth:    depth,
			Sends:    qm.SendCount.Load(),
			Receives: qm.ReceiveCount.Load(),
		})
	}
	return snap
}

// Prometheus exposition
func (m *MockCollector) Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
}

// Utility
func (m *MockCollector) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationMetrics = make(map[string]*OperationMetrics)
	m.queueMetrics = make(map[string]*QueueMetrics)
	m.failuresByKind = make(map[string]int64)
	m.totalOperations = 0
	m.totalFailures = 0
	m.reconnects = 0
}

func (m *MockCollector) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *MockCollector) StartPeriodicSampling() {}

// Ensure MockCollector implements MetricsCollector
var _ MetricsCollector = (*MockCollector)(nil)
