package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ConsensusMetrics contains Prometheus metrics for label validation,
// voting and review operations.
type ConsensusMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewConsensusMetrics creates the metrics and registers them with registry.
func NewConsensusMetrics(registry prometheus.Registerer) (*ConsensusMetrics, error) {
	m := &ConsensusMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ConsensusMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorum_operations_total",
			Help: "Total number of consensus operations by outcome",
		},
		[]string{"operation", "status"}, // status: accepted, rejected, approved, no_votes, hit, miss, ...
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quorum_operation_duration_seconds",
			Help:    "Time taken by consensus operations, including transaction retries",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorum_operation_errors_total",
			Help: "Total number of failed consensus operations by error type",
		},
		[]string{"operation", "error_type"},
	)

	m.collectors = []prometheus.Collector{m.operationsTotal, m.operationDuration, m.errorsTotal}
}

// Describe implements the Collector interface
func (m *ConsensusMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ConsensusMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation implements Recorder.
func (m *ConsensusMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *ConsensusMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *ConsensusMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}
