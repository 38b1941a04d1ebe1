package provider

import (
	"fmt"
	"time"

	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/spf13/cobra"
)

var (
	connectWait         time.Duration
	connectPollInterval = 2 * time.Second
)

var connectCmd = &cobra.Command{
	Use:   "connect <provider>",
	Short: "Connect to a calendar provider",
	Long: `Connect to a calendar provider. When the backend needs your consent,
the authorization URL is printed. Open it in a browser, then run
'calsync provider status' or pass --wait to wait for the grant.

Examples:
  calsync provider connect google
  calsync provider connect outlook --wait 2m`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := providerApp()
		if err != nil {
			return err
		}
		p, err := calendarDomain.ParseProvider(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		result, err := app.Orchestrator.Connect(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to connect %s: %w", p.DisplayName(), err)
		}
		if result.AlreadyConnected() {
			fmt.Fprintf(out, "%s connected.\n", p.DisplayName())
			return nil
		}

		fmt.Fprintf(out, "Authorize %s in your browser:\n%s\n", p.DisplayName(), result.AuthURL)
		if connectWait <= 0 {
			fmt.Fprintln(out, "\nThen run `calsync provider status` to finish connecting.")
			return nil
		}

		deadline := time.Now().Add(connectWait)
		ticker := time.NewTicker(connectPollInterval)
		defer ticker.Stop()
		for time.Now().Before(deadline) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			_ = app.Orchestrator.Refresh(ctx)
			if app.Orchestrator.IsConnected(p) {
				fmt.Fprintf(out, "%s connected.\n", p.DisplayName())
				return nil
			}
		}
		return fmt.Errorf("%s authorization not completed within %s", p.DisplayName(), connectWait)
	},
}

func init() {
	connectCmd.Flags().DurationVar(&connectWait, "wait", 0, "wait this long for the authorization to complete")
}
