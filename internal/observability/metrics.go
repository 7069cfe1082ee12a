// Package observability exposes Prometheus metrics and the localhost debug
// server. Label values are bounded; no metric is labelled per player or lobby.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Simulation metrics
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_frame_duration_seconds",
		Help:    "Time spent in one simulation frame",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033},
	})

	enemiesSimulated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_enemies_simulated",
		Help: "Enemies simulated locally (non-zero only on the lobby owner)",
	})

	projectilesAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_projectiles_alive",
		Help: "Live projectiles in the local world",
	})

	// Sync metrics
	syncSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_sync_messages_sent_total",
		Help: "Outbound messages handed to the transport",
	}, []string{"kind"})

	syncSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_sync_state_suppressed_total",
		Help: "Player-state broadcasts skipped by throttle or delta threshold",
	})

	syncDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_sync_messages_dropped_total",
		Help: "Outbound messages dropped (backoff, transport error)",
	}, []string{"reason"}) // Bounded: "backoff", "error", "closed"

	syncBackoffs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_sync_backoff_total",
		Help: "Times the write backoff window was entered",
	})

	syncInbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_sync_inbound_total",
		Help: "Inbound peer messages by outcome",
	}, []string{"outcome"}) // Bounded: "applied", "stale", "rejected", "decode_error", "overflow"

	ownerPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_owner_promotions_total",
		Help: "Lobby ownership handoffs observed by this client",
	})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_event_log_dropped_total",
		Help: "Event log entries dropped by rate limit or ring overflow",
	}, []string{"reason"}) // Bounded: "global", "source", "overflow"

	// Relay metrics
	relayLobbies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_lobbies_active",
		Help: "Lobbies with at least one connected member",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_websocket_messages_total",
		Help: "Total WebSocket messages relayed",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_connection_rejected_total",
		Help: "Connections rejected by rate limiter, origin or capacity checks",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "lobby_full", "lobby_limit", "ws_limit"

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})
)

// RecordFrame records simulation frame timing.
func RecordFrame(d time.Duration) {
	frameDuration.Observe(d.Seconds())
}

// SetEnemiesSimulated updates the locally simulated enemy gauge.
func SetEnemiesSimulated(n int) {
	enemiesSimulated.Set(float64(n))
}

// SetProjectilesAlive updates the live projectile gauge.
func SetProjectilesAlive(n int) {
	projectilesAlive.Set(float64(n))
}

// RecordSyncSent counts an outbound message of the given kind.
func RecordSyncSent(kind string) {
	syncSent.WithLabelValues(kind).Inc()
}

// RecordSyncSuppressed counts a throttled player-state broadcast.
func RecordSyncSuppressed() {
	syncSuppressed.Inc()
}

// RecordSyncDropped counts a dropped outbound message.
func RecordSyncDropped(reason string) {
	syncDropped.WithLabelValues(reason).Inc()
}

// RecordBackoff counts entry into the write backoff window.
func RecordBackoff() {
	syncBackoffs.Inc()
}

// RecordInbound counts an inbound message outcome.
func RecordInbound(outcome string) {
	syncInbound.WithLabelValues(outcome).Inc()
}

// RecordOwnerPromotion counts an ownership handoff.
func RecordOwnerPromotion() {
	ownerPromotions.Inc()
}

// RecordEventDropped counts an event log entry that was not kept.
func RecordEventDropped(reason string) {
	eventsDropped.WithLabelValues(reason).Inc()
}

// SetRelayLobbies updates the active lobby gauge.
func SetRelayLobbies(n int) {
	relayLobbies.Set(float64(n))
}

// UpdateWSConnections updates WebSocket connection count.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the relayed message counter.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// RecordConnectionRejected increments the rejection counter.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}
