package metrics

import (
	"net/http"
	"time"
)

// MetricsCollector is the interface for metrics collection in QueGate.
// This interface allows for easy mocking in tests.
type MetricsCollector interface {
	// Operation metrics
	RecordOperation(op string, duration time.Duration, errKind string)
	GetOperationMetrics(op string) *OperationMetrics
	GetAllOperationMetrics() []*OperationMetrics

	// Queue metrics
	RecordQueueSend(queue string)
	RecordQueueReceive(queue string)
	SetQueueDepth(queue string, depth int64)
	GetQueueMetrics(queue string) *QueueMetrics
	GetAllQueueMetrics() []*QueueMetrics
	RemoveQueue(queue string)

	// Gateway-level metrics
	RecordReconnect()
	GetGatewaySnapshot() *GatewaySnapshot

	// Prometheus exposition
	Handler() http.Handler

	// Utility
	Clear()
	IsEnabled() bool
	// StartPeriodicSampling starts the periodic sampling of metrics at the
	// configured interval
	StartPeriodicSampling()
}

// Ensure Collector implements MetricsCollector
var _ MetricsCollector = (*Collector)(nil)
