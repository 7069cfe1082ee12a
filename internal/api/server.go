package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pokemon-arena/internal/config"
	"pokemon-arena/internal/logger"
)

// Server is the lobby relay: an HTTP API for lobby records plus one
// websocket hub per lobby. It never simulates the game.
type Server struct {
	cfg         config.ServerConfig
	store       *LobbyStore
	router      *chi.Mux
	ws          *WebSocketHandler
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer creates a relay server. Nothing listens until Start.
func NewServer(cfg config.ServerConfig) *Server {
	s := &Server{
		cfg:         cfg,
		store:       NewLobbyStore(cfg.MaxLobbies, cfg.MaxLobbyMembers),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}
	s.ws = NewWebSocketHandler(s.store)
	s.router = NewRouter(RouterConfig{
		Store:       s.store,
		WebSocket:   s.ws,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// Store returns the lobby store.
func (s *Server) Store() *LobbyStore { return s.store }

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler { return s.router }

// Start listens on the configured port and blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Log.WithField("addr", addr).Info("🌐 Relay server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and disconnects every member.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	s.store.CloseAll()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
