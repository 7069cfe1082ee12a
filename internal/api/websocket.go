package api

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"pokemon-arena/internal/logger"
	"pokemon-arena/internal/observability"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 1000

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

// WebSocketHandler admits lobby members and hands them to their hub.
type WebSocketHandler struct {
	store     *LobbyStore
	wsLimiter *WebSocketRateLimiter
	upgrader  websocket.Upgrader
	total     int64 // atomic
}

// NewWebSocketHandler creates a handler over the lobby store.
func NewWebSocketHandler(store *LobbyStore) *WebSocketHandler {
	return &WebSocketHandler{
		store:     store,
		wsLimiter: NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Non-browser clients (the headless arena client) send no Origin.
	if origin == "" || IsAllowedOrigin(origin) {
		return true
	}
	logger.Log.WithField("origin", origin).Warn("⚠️ WebSocket connection rejected")
	observability.RecordConnectionRejected("origin")
	return false
}

// Connections returns the number of open member connections.
func (h *WebSocketHandler) Connections() int {
	return int(atomic.LoadInt64(&h.total))
}

// LimiterStats reports websocket admission counters and how many member
// connections the caller's IP currently holds.
func (h *WebSocketHandler) LimiterStats(r *http.Request) map[string]interface{} {
	return map[string]interface{}{
		"rejected":       h.wsLimiter.GetStats()["rejected"],
		"maxPerIP":       MaxWSConnectionsPerIP,
		"callerSessions": h.wsLimiter.GetConnectionCount(GetClientIP(r)),
	}
}

// ServeHTTP handles GET /lobbies/{id}/ws?uid=...&name=...
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lobby, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" || len(uid) > 64 {
		writeError(w, "uid is required", http.StatusBadRequest)
		return
	}

	if h.Connections() >= MaxWSConnectionsTotal {
		observability.RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	hub := lobby.Hub()
	if hub.maxMembers > 0 && hub.ClientCount() >= hub.maxMembers {
		observability.RecordConnectionRejected("lobby_full")
		writeError(w, ErrLobbyFull.Error(), http.StatusServiceUnavailable)
		return
	}

	ip := GetClientIP(r)
	if !h.wsLimiter.Allow(ip) {
		observability.RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade error")
		h.wsLimiter.Release(ip)
		return
	}

	c := &wsClient{
		uid:  uid,
		name: r.URL.Query().Get("name"),
		ip:   ip,
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}
	if err := hub.join(c); err != nil {
		reason := "invalid"
		if errors.Is(err, ErrLobbyFull) {
			reason = "lobby_full"
		}
		observability.RecordConnectionRejected(reason)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}
	observability.UpdateWSConnections(int(atomic.AddInt64(&h.total, 1)))

	go hub.writePump(c)
	go func() {
		defer func() {
			hub.leave(c)
			h.wsLimiter.Release(ip)
			observability.UpdateWSConnections(int(atomic.AddInt64(&h.total, -1)))
		}()
		hub.readPump(c)
	}()
}
