package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/huynnh/calsync/adapter/cli"
	mcpinternal "github.com/huynnh/calsync/internal/mcp"
	"github.com/huynnh/calsync/pkg/observability"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Config == nil {
			return cli.ErrNotInitialized
		}

		cfg := *app.Config
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logger := newServerLogger(cmd.ErrOrStderr(), cfg.IsDevelopment() || cli.Verbose())
		err := mcpinternal.Serve(cmd.Context(), &cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default MCP_ADDR)")
}

func newServerLogger(out io.Writer, debug bool) *slog.Logger {
	cfg := observability.LogConfig{Level: slog.LevelInfo, Output: out, Service: "calsync-mcp", Version: cli.Version}
	if debug {
		cfg.Level = slog.LevelDebug
	}
	return observability.NewLogger(cfg)
}
