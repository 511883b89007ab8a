package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts HTTP requests by route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudshield",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests, labeled by method and status class.",
	}, []string{"method", "status"})

	// RequestsInFlight is the number of HTTP requests being served.
	RequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudshield",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Current number of HTTP requests being served.",
	})

	// AnalysesTotal counts analyses by response protocol and outcome.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudshield",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total analyses, labeled by protocol (json|text) and result.",
	}, []string{"protocol", "result"})

	// GenerateDurationSeconds is the time spent in the remote model call.
	GenerateDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fraudshield",
		Subsystem: "analyzer",
		Name:      "generate_duration_seconds",
		Help:      "Latency of the remote generate call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60, 120},
	}, []string{"protocol"})

	// ChatStreamsTotal counts chat replies by outcome (ok|fallback).
	ChatStreamsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraudshield",
		Subsystem: "chat",
		Name:      "streams_total",
		Help:      "Total chat replies streamed, labeled by result.",
	}, []string{"result"})

	// ChatSessions is the number of live chat sessions in the registry.
	ChatSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudshield",
		Subsystem: "chat",
		Name:      "sessions",
		Help:      "Current number of chat sessions held by the server.",
	})
)

// Register adds all collectors to the default registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestsInFlight,
			AnalysesTotal,
			GenerateDurationSeconds,
			ChatStreamsTotal,
			ChatSessions,
		)
	})
}
