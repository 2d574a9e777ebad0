package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	apiRequestsTotal         *prometheus.CounterVec
	apiLatencySeconds        *prometheus.HistogramVec
	apiErrorsTotal           *prometheus.CounterVec
	chatMessagesSent         *prometheus.CounterVec
	uploadRejected           *prometheus.CounterVec
	realtimeConnectionsTotal prometheus.Counter
	realtimeEventsTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelearns_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shelearns_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelearns_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		chatMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelearns_chat_messages_sent_total",
			Help: "Total number of chat messages stored, by message type.",
		}, []string{"type"})

		uploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelearns_uploads_rejected_total",
			Help: "Total number of rejected file uploads, by reason.",
		}, []string{"reason"})

		realtimeConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shelearns_realtime_connections_total",
			Help: "Total number of accepted realtime socket connections.",
		})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shelearns_realtime_events_total",
			Help: "Total number of realtime events broadcast, by room.",
		}, []string{"room"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			chatMessagesSent,
			uploadRejected,
			realtimeConnectionsTotal,
			realtimeEventsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ChatMessagesSent exposes the counter for stored chat messages.
func ChatMessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessagesSent
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejected
}

// RealtimeConnectionsTotal exposes the counter for realtime connections.
func RealtimeConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return realtimeConnectionsTotal
}

// RealtimeEventsTotal exposes the counter for broadcast realtime events.
func RealtimeEventsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}
