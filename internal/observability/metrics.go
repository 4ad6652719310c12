package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for backend calls.
type Metrics struct {
	mu            sync.Mutex
	requestCount  map[string]int64
	failureCount  map[string]int64
	totalDuration time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests      map[string]int64
	Failures      map[string]int64
	TotalDuration time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		failureCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests. A zero status means no response arrived.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.totalDuration += duration
}

// RecordFailure increments failure counters by classified kind.
func (m *Metrics) RecordFailure(path, method, kind string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + kind
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Requests: map[string]int64{}, Failures: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Requests:      make(map[string]int64, len(m.requestCount)),
		Failures:      make(map[string]int64, len(m.failureCount)),
		TotalDuration: m.totalDuration,
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.failureCount {
		snap.Failures[k] = v
	}
	return snap
}

// RequestKey builds the key used in MetricsSnapshot.Requests.
func RequestKey(path, method string, status int) string {
	return pathKey(path, method, status)
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
