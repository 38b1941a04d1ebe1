package provider

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

// Cmd is the provider command group.
var Cmd = &cobra.Command{
	Use:   "provider",
	Short: "Connect and sync Google or Outlook",
	Long: `Connect an external calendar provider and keep it in sync.

Supported providers:
  google     - Google Calendar and Google Tasks
  outlook    - Outlook Calendar and Microsoft To Do

Only one provider may be connected at a time. Connecting one disconnects
the other.`,
}

func init() {
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(connectCmd)
	Cmd.AddCommand(disconnectCmd)
	Cmd.AddCommand(syncCmd)
}

func providerApp() (*cli.App, error) {
	app := cli.GetApp()
	if app == nil || app.Orchestrator == nil {
		return nil, cli.ErrNotInitialized
	}
	if err := app.RequireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

// resolveProvider parses args[0], or picks the connected provider.
func resolveProvider(app *cli.App, args []string) (calendarDomain.Provider, error) {
	if len(args) > 0 {
		return calendarDomain.ParseProvider(args[0])
	}
	if p, ok := app.Orchestrator.ConnectedProvider(); ok {
		return p, nil
	}
	return "", fmt.Errorf("no provider connected, run `calsync provider connect <google|outlook>`")
}
