package bk178x

import (
	"time"

	"go.uber.org/atomic"
)

// Metrics tracks command exchange statistics for one or more devices.
// The zero value is ready to use.
type Metrics struct {
	// Exchanges
	Commands        atomic.Int64 // Total commands attempted
	Successes       atomic.Int64 // Commands answered with success
	TransportErrors atomic.Int64 // Write/read failures below the protocol
	BytesWritten    atomic.Int64 // Total bytes written
	BytesRead       atomic.Int64 // Total reply bytes received, partial ones included

	// Latency
	TotalLatency atomic.Duration // Sum of exchange durations
	MaxLatency   atomic.Duration // Slowest exchange

	// Health Indicators
	ConsecutiveFailures atomic.Int64 // Failures since the last success
	LastCommandTime     atomic.Int64 // Unix nanoseconds of the last exchange
	LastErrorTime       atomic.Int64 // Unix nanoseconds of the last failure

	byStatus [StatusUnknown + 1]atomic.Int64
}

// HealthStatus represents the overall health of the link to a supply.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusIdle      HealthStatus = "idle"
)

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Timestamp           time.Time
	Commands            int64
	Successes           int64
	TransportErrors     int64
	ByStatus            map[Status]int64
	BytesWritten        int64
	BytesRead           int64
	AverageLatency      time.Duration
	MaxLatency          time.Duration
	ConsecutiveFailures int64
	SuccessRate         float64 // Percent of commands that succeeded
	HealthStatus        HealthStatus
}

// StatusCount returns how many exchanges ended with s.
func (m *Metrics) StatusCount(s Status) int64 {
	if s < 0 || int(s) >= len(m.byStatus) {
		return 0
	}
	return m.byStatus[s].Load()
}

func (m *Metrics) record(s Status, received int, latency time.Duration) {
	m.Commands.Inc()
	m.BytesRead.Add(int64(received))
	m.observeLatency(latency)
	if s >= 0 && int(s) < len(m.byStatus) {
		m.byStatus[s].Inc()
	}
	if s.OK() {
		m.Successes.Inc()
		m.ConsecutiveFailures.Store(0)
		return
	}
	m.recordFailure()
}

func (m *Metrics) recordTransportError(latency time.Duration) {
	m.Commands.Inc()
	m.TransportErrors.Inc()
	m.observeLatency(latency)
	m.recordFailure()
}

func (m *Metrics) recordFailure() {
	m.ConsecutiveFailures.Inc()
	m.LastErrorTime.Store(time.Now().UnixNano())
}

func (m *Metrics) observeLatency(latency time.Duration) {
	m.TotalLatency.Add(latency)
	m.LastCommandTime.Store(time.Now().UnixNano())
	for {
		cur := m.MaxLatency.Load()
		if latency <= cur || m.MaxLatency.CompareAndSwap(cur, latency) {
			return
		}
	}
}

// Snapshot returns the current counters and derived rates.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	snap := &MetricsSnapshot{
		Timestamp:           time.Now(),
		Commands:            m.Commands.Load(),
		Successes:           m.Successes.Load(),
		TransportErrors:     m.TransportErrors.Load(),
		ByStatus:            make(map[Status]int64, len(m.byStatus)),
		BytesWritten:        m.BytesWritten.Load(),
		BytesRead:           m.BytesRead.Load(),
		MaxLatency:          m.MaxLatency.Load(),
		ConsecutiveFailures: m.ConsecutiveFailures.Load(),
		SuccessRate:         100.0,
	}
	for s := range m.byStatus {
		if n := m.byStatus[s].Load(); n > 0 {
			snap.ByStatus[Status(s)] = n
		}
	}
	if snap.Commands > 0 {
		snap.AverageLatency = m.TotalLatency.Load() / time.Duration(snap.Commands)
		snap.SuccessRate = float64(snap.Successes) / float64(snap.Commands) * 100
	}
	snap.HealthStatus = assessHealthStatus(snap)
	return snap
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.Commands.Store(0)
	m.Successes.Store(0)
	m.TransportErrors.Store(0)
	m.BytesWritten.Store(0)
	m.BytesRead.Store(0)
	m.TotalLatency.Store(0)
	m.MaxLatency.Store(0)
	m.ConsecutiveFailures.Store(0)
	m.LastCommandTime.Store(0)
	m.LastErrorTime.Store(0)
	for i := range m.byStatus {
		m.byStatus[i].Store(0)
	}
}

func assessHealthStatus(snap *MetricsSnapshot) HealthStatus {
	if snap.Commands == 0 {
		return HealthStatusIdle
	}

	// Check for critical issues
	if snap.ConsecutiveFailures > 5 || snap.SuccessRate < 50.0 {
		return HealthStatusUnhealthy
	}

	if snap.ConsecutiveFailures > 2 || snap.SuccessRate < 90.0 {
		return HealthStatusDegraded
	}

	return HealthStatusHealthy
}
