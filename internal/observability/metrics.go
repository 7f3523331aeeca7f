package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "c360chat_http_requests_total",
			Help: "HTTP requests by method, matched route and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "c360chat_http_request_duration_seconds",
			Help:    "HTTP request latency by matched route.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"method", "route", "status"},
	)
	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "c360chat_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "c360chat_turns_total",
			Help: "Conversation turns by outcome and prompt mode.",
		},
		[]string{"outcome", "mode"},
	)
	turnDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "c360chat_turn_duration_seconds",
			Help:    "End-to-end latency of a conversation turn.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "c360chat_generation_duration_seconds",
			Help:    "Latency of SQL generation calls to the language model.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "c360chat_query_duration_seconds",
			Help:    "Latency of warehouse query execution.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "c360chat_active_sessions",
			Help: "Open chat sessions.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		httpRequestsInFlight,
		turnsTotal,
		turnDurationSeconds,
		generationDurationSeconds,
		queryDurationSeconds,
		activeSessions,
	)
}

func ObserveTurn(outcome, mode string, elapsed time.Duration) {
	turnsTotal.WithLabelValues(outcome, mode).Inc()
	turnDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveGeneration(elapsed time.Duration) {
	generationDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveQuery(elapsed time.Duration) {
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func SetActiveSessions(count int) {
	activeSessions.Set(float64(max(count, 0)))
}
