package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/BruksfildServices01/barber-turnos/internal/audit"
	"github.com/BruksfildServices01/barber-turnos/internal/backup"
	"github.com/BruksfildServices01/barber-turnos/internal/config"
	"github.com/BruksfildServices01/barber-turnos/internal/infra/filestore"
	"github.com/BruksfildServices01/barber-turnos/internal/logger"
	"github.com/BruksfildServices01/barber-turnos/internal/metrics"
	"github.com/BruksfildServices01/barber-turnos/internal/middleware"
	"github.com/BruksfildServices01/barber-turnos/internal/routes"
	"github.com/BruksfildServices01/barber-turnos/internal/storage"
)

func main() {

	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Everything it opens is closed before it
// returns, on failure paths too.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {

	// only the file engine mirrors snapshots
	var mirror filestore.Mirror
	s3Mirror := backup.FromConfig(cfg)
	if s3Mirror != nil {
		mirror = s3Mirror
		defer s3Mirror.Close()
	}

	backend, err := storage.Open(ctx, cfg, mirror)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("failed to close storage", "error", err)
		}
	}()

	if err := storage.Seed(ctx, backend, cfg); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	auditDispatcher := audit.NewDispatcher(audit.New(backend))
	defer auditDispatcher.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, 5*time.Minute)
	defer limiter.Stop()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		Backend:  backend,
		Audit:    auditDispatcher,
		Logger:   log,
		Limiter:  limiter,
		Metrics:  collector,
		Gatherer: reg,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server running", "addr", cfg.Addr())
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
