package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/huynnh/calsync/adapter/cli"
)

// ToolDependencies provides the application the MCP tools act on.
type ToolDependencies struct {
	App *cli.App
}

var toolGroups = []func(*mcp.Server, ToolDependencies) error{
	registerCalendarTools,
	registerProviderTools,
	registerTaskTools,
}

// RegisterCLITools registers the calendar, provider and task tools. Each
// tool runs against the same App the CLI commands use.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	for _, register := range toolGroups {
		if err := register(srv, deps); err != nil {
			return err
		}
	}
	return nil
}
