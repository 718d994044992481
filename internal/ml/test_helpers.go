package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu              sync.Mutex
	predictions     int
	failures        int
	latencySum      float64
	latencyCount    int
	neighborLookups int
}

func (m *MockMetrics) PredictionsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions++
}

func (m *MockMetrics) FailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) LatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
	m.latencyCount++
}

func (m *MockMetrics) NeighborLookupsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neighborLookups++
}

// Counts returns predictions, failures, latency observations and neighbor lookups.
func (m *MockMetrics) Counts() (predictions, failures, latencies, lookups int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions, m.failures, m.latencyCount, m.neighborLookups
}
