package bk178x

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Metrics as Prometheus metrics.
type Collector struct {
	metrics *Metrics

	commands        *prometheus.Desc
	results         *prometheus.Desc
	transportErrors *prometheus.Desc
	bytes           *prometheus.Desc
	latency         *prometheus.Desc
	maxLatency      *prometheus.Desc
	consecutive     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector reading m. constLabels are attached to
// every metric, e.g. {"psu": "bench-1"}.
func NewCollector(m *Metrics, constLabels prometheus.Labels) *Collector {
	return &Collector{
		metrics: m,
		commands: prometheus.NewDesc("bk178x_commands_total",
			"Total commands sent to the supply.", nil, constLabels),
		results: prometheus.NewDesc("bk178x_command_results_total",
			"Command outcomes by decoded status.", []string{"status"}, constLabels),
		transportErrors: prometheus.NewDesc("bk178x_transport_errors_total",
			"Exchanges aborted by a serial write or read error.", nil, constLabels),
		bytes: prometheus.NewDesc("bk178x_bytes_total",
			"Bytes moved over the serial link.", []string{"direction"}, constLabels),
		latency: prometheus.NewDesc("bk178x_exchange_seconds_total",
			"Cumulative time spent in command exchanges.", nil, constLabels),
		maxLatency: prometheus.NewDesc("bk178x_exchange_max_seconds",
			"Slowest command exchange observed.", nil, constLabels),
		consecutive: prometheus.NewDesc("bk178x_consecutive_failures",
			"Failed commands since the last success.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commands
	ch <- c.results
	ch <- c.transportErrors
	ch <- c.bytes
	ch <- c.latency
	ch <- c.maxLatency
	ch <- c.consecutive
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.metrics
	ch <- prometheus.MustNewConstMetric(c.commands, prometheus.CounterValue, float64(m.Commands.Load()))
	for s := StatusSuccess; s <= StatusUnknown; s++ {
		ch <- prometheus.MustNewConstMetric(c.results, prometheus.CounterValue, float64(m.StatusCount(s)), s.label())
	}
	ch <- prometheus.MustNewConstMetric(c.transportErrors, prometheus.CounterValue, float64(m.TransportErrors.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(m.BytesWritten.Load()), "tx")
	ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(m.BytesRead.Load()), "rx")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.CounterValue, m.TotalLatency.Load().Seconds())
	ch <- prometheus.MustNewConstMetric(c.maxLatency, prometheus.GaugeValue, m.MaxLatency.Load().Seconds())
	ch <- prometheus.MustNewConstMetric(c.consecutive, prometheus.GaugeValue, float64(m.ConsecutiveFailures.Load()))
}
