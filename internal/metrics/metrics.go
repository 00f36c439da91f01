// Package metrics holds the Prometheus collectors for the question pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline stages.
const (
	StageGenerate = "generate"
	StageValidate = "validate"
	StageExecute  = "execute"
)

// Operations a request can ask for.
const (
	OperationAnalyze   = "analyze"
	OperationTranslate = "translate"
)

// Outcomes recorded per request. Failures use the error kind name.
const (
	OutcomeOK = "ok"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	rejectedQueries prometheus.Counter
	resultRecords   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registry yields nil, and every method on a nil *Metrics is a no-op.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cypherchat_requests_total",
				Help: "Total number of questions handled, by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cypherchat_stage_duration_seconds",
				Help:    "Duration of each pipeline stage",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"stage"},
		),
		rejectedQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cypherchat_rejected_queries_total",
				Help: "Total number of generated queries rejected by validation",
			},
		),
		resultRecords: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cypherchat_result_records",
				Help:    "Number of records returned per executed query",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}

	reg.MustRegister(m.requestsTotal, m.stageDuration, m.rejectedQueries, m.resultRecords)
	return m
}

// ObserveRequest counts one finished request.
func (m *Metrics) ObserveRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.rejectedQueries.Inc()
}

func (m *Metrics) ObserveRecords(n int) {
	if m == nil {
		return
	}
	m.resultRecords.Observe(float64(n))
}
