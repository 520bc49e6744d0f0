package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/adapters/http/api"
	"github.com/okian/fest/internal/adapters/http/swagger"
	"github.com/okian/fest/internal/adapters/sheet"
	"github.com/okian/fest/internal/adapters/upload"
	app "github.com/okian/fest/internal/app"
	"github.com/okian/fest/internal/config"
	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

const (
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "fest server exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return err
		}
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := docstore.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	hub := api.NewHub(
		api.WithHubOrigins(cfg.AllowedOrigins),
		api.WithHubLogger(log.Named("hub")),
	)
	defer hub.Close()

	svc := app.New(store, serviceOptions(cfg, log, hub)...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	handler, err := buildHandler(cfg, svc, hub, log)
	if err != nil {
		return err
	}
	srv := api.NewHTTPServer(cfg.Addr, handler)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.StoreDriver),
			logger.Bool("sheet", cfg.SheetURL != ""),
			logger.Bool("upload", cfg.UploadURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// serviceOptions maps configuration onto service options. The sheet and
// upload collaborators are attached only when configured.
func serviceOptions(cfg *config.Config, log logger.Logger, hub *api.Hub) []app.Option {
	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.IdempotencySize),
		app.WithTopLimit(cfg.MaxStandingsLimit),
		app.WithListTimeout(cfg.ListTimeout()),
		app.WithBroadcaster(hub),
	}
	if cfg.SheetURL != "" {
		opts = append(opts, app.WithSheet(sheet.New(cfg.SheetURL,
			sheet.WithTimeout(cfg.SheetTimeout()),
			sheet.WithAliases(normalize.Default().WithOverrides(cfg.ColumnAliases)),
			sheet.WithLogger(log.Named("sheet")),
		)))
	}
	if cfg.UploadURL != "" {
		opts = append(opts, app.WithUploader(upload.New(cfg.UploadURL, cfg.UploadPreset,
			upload.WithTimeout(cfg.UploadTimeout()),
			upload.WithLogger(log.Named("upload")),
		)))
	}
	return opts
}

// buildHandler assembles the API router with the documentation routes.
func buildHandler(cfg *config.Config, svc *app.Service, hub *api.Hub, log logger.Logger) (http.Handler, error) {
	r := api.NewServer(svc,
		api.WithAdminToken(cfg.AdminToken),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithMaxLimit(cfg.MaxStandingsLimit),
		api.WithHub(hub),
		api.WithLogger(log.Named("http")),
	).Routes()
	if err := swagger.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics refreshes gauges that are not driven by events.
func updateServiceMetrics(svc *app.Service) {
	// GetStats already refreshes the queue length gauge.
	stats := svc.GetStats()

	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
