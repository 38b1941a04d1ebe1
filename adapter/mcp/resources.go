package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/huynnh/calsync/adapter/cli"
)

// RegisterResources registers MCP resources that expose calendar data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	app := deps.App

	srv.Resource("calsync://today").
		Name("Today").
		Description("Today's merged calendar cell grouped by source").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			bucket, err := dayView(ctx, app, calendarViewInput{Offline: cli.Offline()})
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, bucket)
		})

	srv.Resource("calsync://providers").
		Name("Providers").
		Description("Connection state of each calendar provider").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			statuses, err := providerStatus(ctx, app)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, statuses)
		})

	return nil
}

func jsonContent(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
