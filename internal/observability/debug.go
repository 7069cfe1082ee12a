package observability

import (
	"net/http"
	"net/http/pprof"
	"os"

	"pokemon-arena/internal/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DebugConfig configures the debug server.
type DebugConfig struct {
	Enabled       bool
	ListenAddr    string // Must stay on localhost unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultDebugConfig returns safe defaults.
func DefaultDebugConfig() DebugConfig {
	return DebugConfig{
		Enabled:    os.Getenv("DISABLE_DEBUG_SERVER") != "true",
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugHandler builds the pprof + metrics + health mux.
func DebugHandler(cfg DebugConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer serves DebugHandler in the background.
func StartDebugServer(cfg DebugConfig) {
	if !cfg.Enabled {
		logger.Log.Info("📊 Debug server disabled")
		return
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			logger.Log.Warn("⚠️ Debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	handler := DebugHandler(cfg)
	go func() {
		logger.Log.WithField("addr", cfg.ListenAddr).Info("📊 Debug server starting")
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			logger.Log.WithError(err).Warn("⚠️ Debug server error")
		}
	}()
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
