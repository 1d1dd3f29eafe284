package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	dispatches   *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	oracleCalls  *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		dispatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchat_dispatch_turns_total",
				Help: "Dispatch turns by outcome (grounded, fallback, error)",
			},
			[]string{"outcome"},
		),
		toolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchat_tool_invocations_total",
				Help: "Tool invocations by tool name",
			},
			[]string{"tool"},
		),
		oracleCalls: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finchat_oracle_call_duration_seconds",
				Help:    "Duration of oracle calls by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchat_cache_lookups_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finchat_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordDispatch records one finished dispatch turn.
func (r *Recorder) RecordDispatch(outcome string) {
	r.dispatches.WithLabelValues(outcome).Inc()
}

// RecordToolInvocation records one executed tool call.
func (r *Recorder) RecordToolInvocation(tool string) {
	r.toolCalls.WithLabelValues(tool).Inc()
}

// RecordOracleCall records oracle call latency in seconds.
func (r *Recorder) RecordOracleCall(op string, seconds float64) {
	r.oracleCalls.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
