package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Query outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckgate_queries_total",
			Help: "Total number of gated statement executions by outcome.",
		},
		[]string{"outcome"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckgate_query_duration_seconds",
			Help:    "Wall-clock latency of statement executions.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)
	interruptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duckgate_interrupts_total",
			Help: "Total number of in-flight statements interrupted on timeout.",
		},
	)
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckgate_imports_total",
			Help: "Total number of bulk imports by source format.",
		},
		[]string{"format"},
	)
)

func init() {
	prometheus.MustRegister(queriesTotal, queryDurationSeconds, interruptsTotal, importsTotal)
}

func ObserveQuery(outcome string, elapsed time.Duration) {
	queriesTotal.WithLabelValues(outcome).Inc()
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func IncrementInterrupts() {
	interruptsTotal.Inc()
}

func IncrementImports(format string) {
	importsTotal.WithLabelValues(format).Inc()
}
