package metrics

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// ========================================
// Constructor Tests
// ========================================

func TestNewCollector(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		wantEnabled    bool
		wantWindowSize time.Duration
		wantMaxSamples int
	}{
		{
			name:           "with_custom_config",
			config:         &Config{Enabled: true, WindowSize: 10 * time.Minute, MaxSamples: 120, LatencyWindow: 32},
			wantEnabled:    true,
			wantWindowSize: 10 * time.Minute,
			wantMaxSamples: 120,
		},
		{
			name:           "with_nil_config",
			config:         nil,
			wantEnabled:    true,
			wantWindowSize: 5 * time.Minute,
			wantMaxSamples: 60,
		},
		{
			name:           "with_disabled_config",
			config:         &Config{Enabled: false, WindowSize: 5 * time.Minute, MaxSamples: 60},
			wantEnabled:    false,
			wantWindowSize: 5 * time.Minute,
			wantMaxSamples: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.config)

			if c.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", c.IsEnabled(), tt.wantEnabled)
			}

			if c.config.WindowSize != tt.wantWindowSize {
				t.Errorf("WindowSize = %v, want %v", c.config.WindowSize, tt.wantWindowSize)
			}

			if c.config.MaxSamples != tt.wantMaxSamples {
				t.Errorf("MaxSamples = %v, want %v", c.config.MaxSamples, tt.wantMaxSamples)
			}

			if c.config.LatencyWindow < 1 {
				t.Errorf("LatencyWindow = %d, want >= 1", c.config.LatencyWindow)
			}

			// Verify rate trackers initialized
			if c.operationRate == nil {
				t.Error("operationRate not initialized")
			}
			if c.failureRate == nil {
				t.Error("failureRate not initialized")
			}
			if c.depthRate == nil {
				t.Error("depthRate not initialized")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if !config.Enabled {
		t.Error("default config should be enabled")
	}

	if config.WindowSize != 5*time.Minute {
		t.Errorf("WindowSize = %v, want 5m", config.WindowSize)
	}

	if config.MaxSamples != 60 {
		t.Errorf("MaxSamples = %v, want 60", config.MaxSamples)
	}

	if config.SamplesInterval != 5 {
		t.Errorf("SamplesInterval = %d, want 5", config.SamplesInterval)
	}
}

// ========================================
// Operation Metrics Tests
// ========================================

func TestRecordOperationSuccess(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", 3*time.Millisecond, "")
	c.RecordOperation("send", 5*time.Millisecond, "")

	om := c.GetOperationMetrics("send")
	if om == nil {
		t.Fatal("operation metrics should exist after recording")
	}

	if om.Count.Load() != 2 {
		t.Errorf("Count = %d, want 2", om.Count.Load())
	}

	if om.Failures.Load() != 0 {
		t.Errorf("Failures = %d, want 0", om.Failures.Load())
	}

	avg, max := om.Latency.Stats()
	if avg != 4*time.Millisecond {
		t.Errorf("avg latency = %v, want 4ms", avg)
	}
	if max != 5*time.Millisecond {
		t.Errorf("max latency = %v, want 5ms", max)
	}

	if c.totalOperations.Load() != 2 {
		t.Errorf("totalOperations = %d, want 2", c.totalOperations.Load())
	}
}

func TestRecordOperationFailure(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("receive", time.Millisecond, "")
	c.RecordOperation("receive", 2*time.Millisecond, "connection")
	c.RecordOperation("receive", time.Millisecond, "connection")
	c.RecordOperation("send", time.Millisecond, "validation")

	om := c.GetOperationMetrics("receive")
	if om.Count.Load() != 3 {
		t.Errorf("Count = %d, want 3", om.Count.Load())
	}
	if om.Failures.Load() != 2 {
		t.Errorf("Failures = %d, want 2", om.Failures.Load())
	}

	if c.totalFailures.Load() != 3 {
		t.Errorf("totalFailures = %d, want 3", c.totalFailures.Load())
	}

	if got := c.kindCounter("connection").Load(); got != 2 {
		t.Errorf("connection failures = %d, want 2", got)
	}
	if got := c.kindCounter("validation").Load(); got != 1 {
		t.Errorf("validation failures = %d, want 1", got)
	}
}

func TestGetAllOperationMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", time.Millisecond, "")
	c.RecordOperation("receive", time.Millisecond, "")
	c.RecordOperation("purge", time.Millisecond, "")

	all := c.GetAllOperationMetrics()
	if len(all) != 3 {
		t.Errorf("len = %d, want 3", len(all))
	}
}

func TestGetOperationMetricsMissing(t *testing.T) {
	c := NewCollector(nil)

	if c.GetOperationMetrics("never-recorded") != nil {
		t.Error("expected nil for unknown operation")
	}
}

// ========================================
// Queue Metrics Tests
// ========================================

func TestQueueSendAndReceive(t *testing.T) {
	c := NewCollector(nil)

	c.RecordQueueSend("orders")
	c.RecordQueueSend("orders")
	c.RecordQueueReceive("orders")

	qm := c.GetQueueMetrics("orders")
	if qm == nil {
		t.Fatal("queue metrics should exist")
	}

	if qm.SendCount.Load() != 2 {
		t.Errorf("SendCount = %d, want 2", qm.SendCount.Load())
	}

	if qm.ReceiveCount.Load() != 1 {
		t.Errorf("ReceiveCount = %d, want 1", qm.ReceiveCount.Load())
	}

	if qm.LastActivity().IsZero() {
		t.Error("LastActivity should be set after traffic")
	}
}

func TestSetQueueDepth(t *testing.T) {
	c := NewCollector(nil)

	c.SetQueueDepth("orders", 42)

	qm := c.GetQueueMetrics("orders")
	if qm.Depth.Load() != 42 {
		t.Errorf("Depth = %d, want 42", qm.Depth.Load())
	}

	c.SetQueueDepth("orders", 7)
	if qm.Depth.Load() != 7 {
		t.Errorf("Depth = %d, want 7", qm.Depth.Load())
	}
}

func TestRemoveQueue(t *testing.T) {
	c := NewCollector(nil)

	c.RecordQueueSend("orders")
	c.RecordQueueSend("billing")

	if c.queueCount.Load() != 2 {
		t.Fatalf("queueCount = %d, want 2", c.queueCount.Load())
	}

	c.RemoveQueue("orders")

	if c.GetQueueMetrics("orders") != nil {
		t.Error("orders should be removed")
	}
	if c.queueCount.Load() != 1 {
		t.Errorf("queueCount = %d, want 1", c.queueCount.Load())
	}

	// Removing twice must not drive the count negative
	c.RemoveQueue("orders")
	if c.queueCount.Load() != 1 {
		t.Errorf("queueCount = %d, want 1 after double remove", c.queueCount.Load())
	}
}

func TestEmptyQueueName(t *testing.T) {
	c := NewCollector(nil)

	c.RecordQueueSend("")

	qm := c.GetQueueMetrics("")
	if qm == nil {
		t.Fatal("should create metrics even for empty name")
	}

	if qm.SendCount.Load() != 1 {
		t.Errorf("SendCount = %d, want 1", qm.SendCount.Load())
	}
}

// ========================================
// Gateway Metrics Tests
// ========================================

func TestRecordReconnect(t *testing.T) {
	c := NewCollector(nil)

	c.RecordReconnect()
	c.RecordReconnect()

	if c.reconnectCount.Load() != 2 {
		t.Errorf("reconnectCount = %d, want 2", c.reconnectCount.Load())
	}
}

func TestGatewaySnapshot(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", 2*time.Millisecond, "")
	c.RecordOperation("receive", time.Millisecond, "connection")
	c.RecordQueueSend("orders")
	c.SetQueueDepth("orders", 5)
	c.SetQueueDepth("billing", 3)
	c.RecordReconnect()

	snap := c.GetGatewaySnapshot()

	if snap.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if snap.UptimeSeconds < 0 {
		t.Errorf("UptimeSeconds = %f, want >= 0", snap.UptimeSeconds)
	}
	if snap.TotalOperations != 2 {
		t.Errorf("TotalOperations = %d, want 2", snap.TotalOperations)
	}
	if snap.TotalFailures != 1 {
		t.Errorf("TotalFailures = %d, want 1", snap.TotalFailures)
	}
	if snap.FailuresByKind["connection"] != 1 {
		t.Errorf("FailuresByKind[connection] = %d, want 1", snap.FailuresByKind["connection"])
	}
	if snap.Reconnects != 1 {
		t.Errorf("Reconnects = %d, want 1", snap.Reconnects)
	}
	if snap.QueueCount != 2 {
		t.Errorf("QueueCount = %d, want 2", snap.QueueCount)
	}
	if snap.TotalDepth != 8 {
		t.Errorf("TotalDepth = %d, want 8", snap.TotalDepth)
	}

	// Lists sorted by name
	if len(snap.Operations) != 2 || snap.Operations[0].Name != "receive" || snap.Operations[1].Name != "send" {
		t.Errorf("Operations not sorted: %+v", snap.Operations)
	}
	if len(snap.Queues) != 2 || snap.Queues[0].Name != "billing" || snap.Queues[1].Name != "orders" {
		t.Errorf("Queues not sorted: %+v", snap.Queues)
	}

	if snap.Operations[1].AvgLatencyMs != 2 {
		t.Errorf("send AvgLatencyMs = %f, want 2", snap.Operations[1].AvgLatencyMs)
	}
}

// ========================================
// Sampling Tests
// ========================================

func TestSampleGatewayRates(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", time.Millisecond, "")
	c.sampleGatewayMetrics()
	time.Sleep(10 * time.Millisecond)
	c.RecordOperation("send", time.Millisecond, "")
	c.sampleGatewayMetrics()

	if got := len(c.operationRate.Samples()); got != 2 {
		t.Errorf("operation samples = %d, want 2", got)
	}

	if rate := c.operationRate.Rate(); rate <= 0 {
		t.Errorf("operation rate = %f, want > 0", rate)
	}
}

func TestSampleQueueDepth(t *testing.T) {
	c := NewCollector(nil)

	c.SetQueueDepth("orders", 10)
	c.sampleQueueMetrics("orders")
	time.Sleep(10 * time.Millisecond)
	c.SetQueueDepth("orders", 20)
	c.sampleQueueMetrics("orders")

	qm := c.GetQueueMetrics("orders")
	count, rate := qm.DepthRate.Stats()
	if count != 20 {
		t.Errorf("latest depth sample = %d, want 20", count)
	}
	if rate <= 0 {
		t.Errorf("depth rate = %f, want > 0", rate)
	}

	// Sampling a queue that was never recorded must not panic
	c.sampleQueueMetrics("ghost")
}

// ========================================
// Prometheus Tests
// ========================================

func TestPrometheusHandler(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", time.Millisecond, "")
	c.RecordOperation("send", time.Millisecond, "connection")
	c.SetQueueDepth("orders", 12)
	c.RecordReconnect()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`quegate_gateway_operations_total{op="send",outcome="success"} 1`,
		`quegate_gateway_operations_total{op="send",outcome="failure"} 1`,
		`quegate_gateway_operation_failures_total{kind="connection",op="send"} 1`,
		`quegate_gateway_queue_depth{queue="orders"} 12`,
		`quegate_gateway_reconnects_total 1`,
		`quegate_gateway_operation_duration_seconds`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestPrometheusQueueRemoval(t *testing.T) {
	c := NewCollector(nil)

	c.SetQueueDepth("orders", 12)
	c.RemoveQueue("orders")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if strings.Contains(rec.Body.String(), `queue="orders"`) {
		t.Error("removed queue should not be exported")
	}
}

// ========================================
// Concurrency Tests
// ========================================

func TestConcurrentOperationRecording(t *testing.T) {
	c := NewCollector(nil)

	const goroutines = 50
	const perGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				c.RecordOperation("send", time.Millisecond, "")
				c.RecordQueueSend("orders")
			}
		}()
	}
	wg.Wait()

	want := int64(goroutines * perGoroutine)
	if got := c.GetOperationMetrics("send").Count.Load(); got != want {
		t.Errorf("Count = %d, want %d", got, want)
	}
	if got := c.GetQueueMetrics("orders").SendCount.Load(); got != want {
		t.Errorf("SendCount = %d, want %d", got, want)
	}
	if got := c.totalOperations.Load(); got != want {
		t.Errorf("totalOperations = %d, want %d", got, want)
	}
}

// ========================================
// Utility Tests
// ========================================

func TestDisabledCollector(t *testing.T) {
	c := NewCollector(&Config{Enabled: false, WindowSize: 5 * time.Minute, MaxSamples: 60})

	c.RecordOperation("send", time.Millisecond, "")
	c.RecordQueueSend("orders")
	c.RecordReconnect()

	if c.GetOperationMetrics("send") != nil {
		t.Error("disabled collector should not create operation entries")
	}
	if c.GetQueueMetrics("orders") != nil {
		t.Error("disabled collector should not create queue entries")
	}
	if c.reconnectCount.Load() != 0 {
		t.Error("disabled collector should not count reconnects")
	}
}

func TestClearMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.RecordOperation("send", time.Millisecond, "connection")
	c.RecordQueueSend("orders")
	c.RecordReconnect()

	if c.GetOperationMetrics("send") == nil {
		t.Fatal("operation should exist before clear")
	}

	c.Clear()

	if len(c.GetAllOperationMetrics()) != 0 {
		t.Error("operations should be cleared")
	}
	if len(c.GetAllQueueMetrics()) != 0 {
		t.Error("queues should be cleared")
	}
	if c.totalOperations.Load() != 0 {
		t.Error("totalOperations should be 0")
	}
	if c.reconnectCount.Load() != 0 {
		t.Error("reconnectCount should be 0")
	}

	snap := c.GetGatewaySnapshot()
	if len(snap.FailuresByKind) != 0 {
		t.Error("FailuresByKind should be empty after clear")
	}
}
