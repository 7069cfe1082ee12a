package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pokemon-arena/internal/observability"
)

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Store: api.NewLobbyStore(8, 4),
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	        CleanupInterval:   time.Minute,
//	    },
//	}
//	ts := httptest.NewServer(api.NewRouter(cfg))
type RouterConfig struct {
	// Store holds the lobbies (required)
	Store *LobbyStore

	// WebSocket admits lobby members. If nil, one is created over Store.
	WebSocket *WebSocketHandler

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil. If both are nil,
	// DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler dependencies.
type routerHandlers struct {
	store       *LobbyStore
	ws          *WebSocketHandler
	rateLimiter *IPRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It starts no goroutines beyond the rate limiter's cleanup loop and opens
// no listeners, so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	ws := cfg.WebSocket
	if ws == nil {
		ws = NewWebSocketHandler(cfg.Store)
	}
	h := &routerHandlers{
		store:       cfg.Store,
		ws:          ws,
		rateLimiter: rateLimiter,
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api/lobbies", func(r chi.Router) {
		r.Get("/", h.handleListLobbies)
		r.Post("/", h.handleCreateLobby)
		r.Get("/{id}", h.handleGetLobby)
		r.Delete("/{id}", h.handleDeleteLobby)
		r.Get("/{id}/members", h.handleGetMembers)
		r.Get("/{id}/map.png", h.handleMapPreview)
	})

	r.Get("/lobbies/{id}/ws", ws.ServeHTTP)

	return r
}

// metricsMiddleware records latency per route pattern, never per raw URL,
// so lobby ids do not become label values.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RecordRequest(r.Method, pattern, status, time.Since(start))
	})
}
