package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModelPurposeQuery   = "query"
	ModelPurposeSummary = "summary"
)

var (
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_turns_total",
			Help: "Total number of completed conversation turns by terminal state.",
		},
		[]string{"outcome"},
	)
	modelCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_model_calls_total",
			Help: "Total number of completion service calls by purpose and status.",
		},
		[]string{"purpose", "status"},
	)
	modelCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlchat_model_call_duration_seconds",
			Help:    "Completion service call latency by purpose.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"purpose"},
	)
	queryExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlchat_query_executions_total",
			Help: "Total number of SQL executions by result kind.",
		},
		[]string{"outcome"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlchat_query_duration_seconds",
			Help:    "SQL execution latency against the store.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sqlchat_active_sessions",
			Help: "Current number of in-memory chat sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		turnsTotal,
		modelCallsTotal,
		modelCallDurationSeconds,
		queryExecutionsTotal,
		queryDurationSeconds,
		activeSessions,
	)
}

func ObserveTurn(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

func ObserveModelCall(purpose string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	modelCallsTotal.WithLabelValues(purpose, status).Inc()
	modelCallDurationSeconds.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func ObserveQueryExecution(outcome string, elapsed time.Duration) {
	queryExecutionsTotal.WithLabelValues(outcome).Inc()
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func SetActiveSessions(count int) {
	if count < 0 {
		count = 0
	}
	activeSessions.Set(float64(count))
}
