package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promMetrics mirrors the collector's counters into a private Prometheus
// registry so the gateway can expose them without touching the default
// registry shared by other importers.
type promMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	queueDepth *prometheus.GaugeVec
	reconnects prometheus.Counter
}

func newPromMetrics() *promMetrics {
	pm := &promMetrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quegate",
			Subsystem: "gateway",
			Name:      "operations_total",
			Help:      "Queue operations processed, by operation and outcome.",
		}, []string{"op", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quegate",
			Subsystem: "gateway",
			Name:      "operation_failures_total",
			Help:      "Failed queue operations, by operation and error kind.",
		}, []string{"op", "kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quegate",
			Subsystem: "gateway",
			Name:      "operation_duration_seconds",
			Help:      "Queue operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quegate",
			Subsystem: "gateway",
			Name:      "queue_depth",
			Help:      "Last observed message count per queue.",
		}, []string{"queue"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quegate",
			Subsystem: "gateway",
			Name:      "reconnects_total",
			Help:      "Connection recoveries triggered by failed operations.",
		}),
	}
	pm.registry.MustRegister(pm.operations, pm.failures, pm.latency, pm.queueDepth, pm.reconnects)
	return pm
}

func (pm *promMetrics) recordOperation(op, outcome string, duration time.Duration) {
	pm.operations.WithLabelValues(op, outcome).Inc()
	pm.latency.WithLabelValues(op).Observe(duration.Seconds())
}

func (pm *promMetrics) recordFailure(op, kind string) {
	pm.failures.WithLabelValues(op, kind).Inc()
}

func (pm *promMetrics) setQueueDepth(queue string, depth int64) {
	pm.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

func (pm *promMetrics) removeQueue(queue string) {
	pm.queueDepth.DeleteLabelValues(queue)
}

func (pm *promMetrics) reset() {
	pm.operations.Reset()
	pm.failures.Reset()
	pm.latency.Reset()
	pm.queueDepth.Reset()
}

func (pm *promMetrics) handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
