package metrics

import (
	"sync"
	"time"
)

// Sample represents a point-in-time counter reading
type Sample struct {
	Count     int64
	Timestamp time.Time
}

// RateTracker tracks cumulative counter samples over a sliding window and
// derives a per-second rate from the oldest and newest readings.
type RateTracker struct {
	mu         sync.RWMutex
	samples    []Sample
	windowSize time.Duration
	maxSamples int
}

// NewRateTracker creates a new rate tracker
// windowSize: how far back to keep samples (e.g., 5 minutes)
// maxSamples: maximum number of samples to keep (prevents unbounded growth)
func NewRateTracker(windowSize time.Duration, maxSamples int) *RateTracker {
	return &RateTracker{
		samples:    make([]Sample, 0, maxSamples),
		windowSize: windowSize,
		maxSamples: maxSamples,
	}
}

// Record adds a sample with the current cumulative count
func (rt *RateTracker) Record(totalCount int64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := time.Now()
	rt.samples = append(rt.samples, Sample{Count: totalCount, Timestamp: now})

	cutoff := now.Add(-rt.windowSize)
	i := 0
	for i < len(rt.samples) && rt.samples[i].Timestamp.Before(cutoff) {
		i++
	}
	rt.samples = rt.samples[i:]

	if len(rt.samples) > rt.maxSamples {
		rt.samples = rt.samples[len(rt.samples)-rt.maxSamples:]
	}
}

// Rate returns the per-second rate over the retained window. At least two
// samples are needed to compute a rate.
func (rt *RateTracker) Rate() float64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if len(rt.samples) < 2 {
		return 0
	}

	oldest := rt.samples[0]
	newest := rt.samples[len(rt.samples)-1]

	elapsed := newest.Timestamp.Sub(oldest.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(newest.Count-oldest.Count) / elapsed
}

// Stats returns the newest cumulative count and the current rate
func (rt *RateTracker) Stats() (count int64, rate float64) {
	rt.mu.RLock()
	if len(rt.samples) > 0 {
		count = rt.samples[len(rt.samples)-1].Count
	}
	rt.mu.RUnlock()
	return count, rt.Rate()
}

// Samples returns a copy of the retained samples, oldest first
func (rt *RateTracker) Samples() []Sample {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	out := make([]Sample, len(rt.samples))
	copy(out, rt.samples)
	return out
}

// Clear removes all samples
func (rt *RateTracker) Clear() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.samples = rt.samples[:0]
}

// LatencyTracker keeps a fixed ring of recent operation durations and reports
// the average and maximum over the retained observations.
type LatencyTracker struct {
	mu     sync.Mutex
	ring   []time.Duration
	next   int
	filled bool
}

// NewLatencyTracker creates a latency tracker retaining the last size
// observations. Size must be at least 1.
func NewLatencyTracker(size int) *LatencyTracker {
	if size < 1 {
		size = 1
	}
	return &LatencyTracker{ring: make([]time.Duration, size)}
}

// Observe records one operation duration
func (lt *LatencyTracker) Observe(d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.ring[lt.next] = d
	lt.next++
	if lt.next == len(lt.ring) {
		lt.next = 0
		lt.filled = true
	}
}

// Stats returns the average and maximum duration over the retained
// observations. Both are zero before the first observation.
func (lt *LatencyTracker) Stats() (avg, max time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	n := lt.next
	if lt.filled {
		n = len(lt.ring)
	}
	if n == 0 {
		return 0, 0
	}

	var total time.Duration
	for i := 0; i < n; i++ {
		d := lt.ring[i]
		total += d
		if d > max {
			max = d
		}
	}
	return total / time.Duration(n), max
}

// Clear discards all observations
func (lt *LatencyTracker) Clear() {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.next = 0
	lt.filled = false
}
