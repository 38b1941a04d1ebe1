package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/huynnh/calsync/adapter/cli/auth"
	"github.com/huynnh/calsync/adapter/cli/calendar"
	"github.com/huynnh/calsync/adapter/cli/event"
	"github.com/huynnh/calsync/adapter/cli/mcp"
	"github.com/huynnh/calsync/adapter/cli/notification"
	"github.com/huynnh/calsync/adapter/cli/provider"
	"github.com/huynnh/calsync/adapter/cli/task"
	"github.com/huynnh/calsync/internal/app"
	identityApp "github.com/huynnh/calsync/internal/identity/application"
	"github.com/huynnh/calsync/pkg/config"
	"github.com/huynnh/calsync/pkg/observability"
)

func main() {
	logConfig := observability.CLILogConfig(cli.Version)
	logger := observability.NewLogger(logConfig)

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.IsDevelopment() && cfg.LogLevel == "" {
		logConfig.Level = slog.LevelDebug
	}
	logger = observability.NewLogger(logConfig.Override(cfg.LogLevel, cfg.LogFormat))
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Bootstrap(ctx); err != nil && !errors.Is(err, identityApp.ErrNotAuthenticated) {
		logger.Debug("session restore failed", "error", err)
	}

	cli.SetApp(cli.NewAppFromContainer(container))

	cli.AddCommand(auth.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(event.Cmd)
	cli.AddCommand(calendar.Cmd)
	cli.AddCommand(provider.Cmd)
	cli.AddCommand(notification.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
