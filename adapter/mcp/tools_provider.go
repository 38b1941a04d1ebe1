package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/huynnh/calsync/adapter/cli"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
)

type providerSyncInput struct {
	Provider string `json:"provider,omitempty"` // google or outlook, default the connected one
}

type providerSyncResult struct {
	Provider   string   `json:"provider"`
	Dropped    bool     `json:"dropped"`
	Items      int      `json:"items"`
	Steps      []string `json:"steps"`
	DurationMS int64    `json:"duration_ms"`
}

func registerProviderTools(srv *mcp.Server, deps ToolDependencies) error {
	app := deps.App

	srv.Tool("provider.status").
		Description("Show the connection state of each calendar provider").
		Handler(func(ctx context.Context, input struct{}) ([]calendarDomain.ConnectionStatus, error) {
			return providerStatus(ctx, app)
		})

	srv.Tool("provider.sync").
		Description("Run a two-way sync with a connected provider").
		Handler(func(ctx context.Context, input providerSyncInput) (*providerSyncResult, error) {
			return providerSync(ctx, app, input)
		})

	return nil
}

func providerStatus(ctx context.Context, app *cli.App) ([]calendarDomain.ConnectionStatus, error) {
	if app == nil || app.Orchestrator == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	if err := app.Orchestrator.Refresh(ctx); err != nil {
		return nil, err
	}
	return app.Orchestrator.Statuses(), nil
}

func providerSync(ctx context.Context, app *cli.App, input providerSyncInput) (*providerSyncResult, error) {
	if app == nil || app.Orchestrator == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}

	var provider calendarDomain.Provider
	if input.Provider != "" {
		p, err := calendarDomain.ParseProvider(input.Provider)
		if err != nil {
			return nil, err
		}
		provider = p
	} else {
		p, ok := app.Orchestrator.ConnectedProvider()
		if !ok {
			return nil, errors.New("no provider connected")
		}
		provider = p
	}

	outcome, err := app.Orchestrator.Sync(ctx, provider)
	if err != nil {
		return nil, err
	}
	return &providerSyncResult{
		Provider:   string(provider),
		Dropped:    outcome.Dropped,
		Items:      outcome.Items,
		Steps:      outcome.Steps,
		DurationMS: outcome.Duration.Milliseconds(),
	}, nil
}
