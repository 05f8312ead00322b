package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parley_ws_connections_active",
			Help: "Currently open WebSocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_ws_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	// Business metrics
	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_messages_posted_total",
			Help: "Total messages posted",
		},
		[]string{"origin"}, // "ws" or "http"
	)

	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_rooms_created_total",
			Help: "Total rooms created",
		},
		[]string{"room_type"}, // "public" or "private"
	)

	EventsUnrecognized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_events_unrecognized_total",
			Help: "Inbound frames dropped as malformed or unknown",
		},
	)

	// Broadcast metrics
	BroadcastsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_broadcast_drops_total",
			Help: "Frames dropped because a recipient send buffer was full",
		},
	)
)
