package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered on the default registry and exposed through
// /metrics when enableMetrics is set.
var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classclash_rooms_created_total",
		Help: "Rooms created since process start",
	})

	RoomsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classclash_rooms_destroyed_total",
		Help: "Rooms destroyed by the reaper or shutdown",
	})

	LiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classclash_rooms_live",
		Help: "Rooms currently registered",
	})

	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classclash_connections",
		Help: "Open websocket connections",
	})

	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classclash_events_total",
		Help: "Inbound socket events by type",
	}, []string{"event"})

	EventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classclash_event_errors_total",
		Help: "Socket events answered with an error ack, by type",
	}, []string{"event"})

	BroadcastsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classclash_broadcasts_total",
		Help: "Room-group broadcasts sent",
	})

	RateLimitDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classclash_ratelimit_disconnects_total",
		Help: "Connections closed for exceeding the event rate limit",
	})
)
