package bk178x

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ZeroValueSnapshot(t *testing.T) {
	var m Metrics
	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.Commands)
	assert.Equal(t, 100.0, snap.SuccessRate)
	assert.Equal(t, HealthStatusIdle, snap.HealthStatus)
	assert.Empty(t, snap.ByStatus)
}

func TestMetrics_RecordAndSnapshot(t *testing.T) {
	var m Metrics
	m.record(StatusSuccess, FrameSize, 10*time.Millisecond)
	m.record(StatusSuccess, FrameSize, 30*time.Millisecond)
	m.record(StatusIncorrectParameter, FrameSize, 20*time.Millisecond)
	m.record(StatusTimeout, 3, time.Second)

	snap := m.Snapshot()
	assert.Equal(t, int64(4), snap.Commands)
	assert.Equal(t, int64(2), snap.Successes)
	assert.Equal(t, int64(3*FrameSize+3), snap.BytesRead)
	assert.Equal(t, time.Second, snap.MaxLatency)
	assert.Equal(t, (10+30+20+1000)*time.Millisecond/4, snap.AverageLatency)
	assert.Equal(t, 50.0, snap.SuccessRate)
	assert.Equal(t, int64(2), snap.ConsecutiveFailures)
	assert.Equal(t, map[Status]int64{
		StatusSuccess:            2,
		StatusIncorrectParameter: 1,
		StatusTimeout:            1,
	}, snap.ByStatus)
	assert.NotZero(t, m.LastErrorTime.Load())
}

func TestMetrics_HealthStatus(t *testing.T) {
	tests := []struct {
		name string
		snap MetricsSnapshot
		want HealthStatus
	}{
		{"idle", MetricsSnapshot{}, HealthStatusIdle},
		{"healthy", MetricsSnapshot{Commands: 100, SuccessRate: 99}, HealthStatusHealthy},
		{"degraded rate", MetricsSnapshot{Commands: 100, SuccessRate: 80}, HealthStatusDegraded},
		{"degraded streak", MetricsSnapshot{Commands: 100, SuccessRate: 97, ConsecutiveFailures: 3}, HealthStatusDegraded},
		{"unhealthy rate", MetricsSnapshot{Commands: 100, SuccessRate: 40}, HealthStatusUnhealthy},
		{"unhealthy streak", MetricsSnapshot{Commands: 100, SuccessRate: 94, ConsecutiveFailures: 6}, HealthStatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, assessHealthStatus(&tt.snap))
		})
	}
}

func TestMetrics_Reset(t *testing.T) {
	var m Metrics
	m.record(StatusUnknown, FrameSize, time.Millisecond)
	m.recordTransportError(time.Millisecond)
	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, int64(0), snap.Commands)
	assert.Equal(t, int64(0), snap.TransportErrors)
	assert.Equal(t, int64(0), m.StatusCount(StatusUnknown))
	assert.Equal(t, time.Duration(0), snap.MaxLatency)
}

func TestMetrics_StatusCountOutOfRange(t *testing.T) {
	var m Metrics
	assert.Equal(t, int64(0), m.StatusCount(Status(-1)))
	assert.Equal(t, int64(0), m.StatusCount(Status(42)))
}

func TestCollector(t *testing.T) {
	var m Metrics
	m.record(StatusSuccess, FrameSize, 5*time.Millisecond)
	m.record(StatusInvalidCommand, FrameSize, 5*time.Millisecond)
	m.BytesWritten.Add(2 * FrameSize)

	c := NewCollector(&m, prometheus.Labels{"psu": "bench"})
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	assert.Equal(t, 16, testutil.CollectAndCount(c))
	assert.Equal(t, 9, testutil.CollectAndCount(c, "bk178x_command_results_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "bk178x_bytes_total"))

	families, err := reg.Gather()
	require.NoError(t, err)

	var commands float64
	results := map[string]float64{}
	for _, mf := range families {
		switch mf.GetName() {
		case "bk178x_commands_total":
			commands = mf.GetMetric()[0].GetCounter().GetValue()
		case "bk178x_command_results_total":
			for _, metric := range mf.GetMetric() {
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == "status" {
						results[lp.GetValue()] = metric.GetCounter().GetValue()
					}
				}
			}
		}
	}
	assert.Equal(t, 2.0, commands)
	assert.Equal(t, 1.0, results["success"])
	assert.Equal(t, 1.0, results["invalid_command"])
	assert.Equal(t, 0.0, results["timeout"])
}
