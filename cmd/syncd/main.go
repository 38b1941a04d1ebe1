package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huynnh/calsync/internal/app"
	identityApp "github.com/huynnh/calsync/internal/identity/application"
	"github.com/huynnh/calsync/pkg/config"
	"github.com/huynnh/calsync/pkg/observability"
)

// version is set at build time.
var version = "dev"

func main() {
	logConfig := observability.DaemonLogConfig(version)
	logger := observability.NewLogger(logConfig)
	logger.Info("starting calsync sync daemon", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = observability.NewLogger(logConfig.Override(cfg.LogLevel, cfg.LogFormat))

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Bootstrap(ctx); err != nil {
		if errors.Is(err, identityApp.ErrNotAuthenticated) {
			logger.Warn("no stored session, run `calsync auth login` and restart")
		} else {
			logger.Warn("session restore failed", "error", err)
		}
	}

	container.StartBackgroundSync(ctx)
	watcher := container.StartNotificationWatcher(ctx)
	logger.Info("background sync started",
		"sync_interval", cfg.SyncInterval,
		"notification_poll_interval", cfg.NotificationPollInterval,
	)

	if cfg.HealthAddr != "" {
		healthSrv := &http.Server{
			Addr:              cfg.HealthAddr,
			Handler:           newHealthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.HealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down sync daemon")
	if err := <-watcher; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("notification watcher stopped", "error", err)
	}
	logger.Info("sync daemon stopped")
}
