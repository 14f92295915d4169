package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/sales-summary/pkg/config"
	"github.com/FACorreiaa/sales-summary/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

// NewRouter mounts the API, health and metrics routes behind the middleware
// chain.
func NewRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()
	deps.SalesHandler.Register(mux)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	cfg := deps.Config.Server
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(deps.Logger),
		middleware.Recover(deps.Logger),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(float64(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
	)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if deps.Scheduler != nil {
		if err := deps.Scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
