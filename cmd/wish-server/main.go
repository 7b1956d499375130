// cmd/wish-server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wish-generator/internal/common/config"
	"wish-generator/internal/common/logger"
	"wish-generator/internal/common/middleware"
	"wish-generator/internal/common/observability"
	gw "wish-generator/internal/handlers/generate-wish"
	"wish-generator/internal/handlers/spa"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting wish server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.String("model", cfg.Upstream.Model),
	)

	if cfg.Upstream.APIKey == "" {
		zapLog.Warn("DEEPSEEK_API_KEY is not set; completion requests will be rejected upstream")
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("prometheus exporter unavailable, otel metrics disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	relay := gw.NewRelay(gw.LoadConfig(cfg), nil, log, obs.Tracer())
	wishHandler := gw.NewHandler(relay, log, obs)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           newRouter(cfg, wishHandler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during server shutdown", zap.Error(err))
	}

	zapLog.Info("Wish server stopped gracefully")
}

func newRouter(cfg *config.Config, wish http.Handler, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST "+gw.Route, wish)
	mux.Handle("POST "+gw.APIRoute, wish)
	mux.HandleFunc("GET /api/tones", gw.ToneListHandler)

	mux.HandleFunc("GET /health", statusHandler("healthy"))
	mux.HandleFunc("GET /ready", statusHandler("ready"))
	mux.Handle("GET /metrics", promhttp.Handler())

	if cfg.App.IsProduction() {
		log.Info("serving front-end bundle", map[string]interface{}{"dir": cfg.Static.Dir})
		mux.Handle("/", spa.NewHandler(cfg.Static.Dir))
	}

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.CORS,
		middleware.Logging(log),
		middleware.Recover(log),
	)
}

func statusHandler(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
