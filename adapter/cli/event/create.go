package event

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/spf13/cobra"
)

var createFlags eventFlags

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new event",
	Long: `Create a new event. Start and end are read in the configured time zone.

Examples:
  calsync event create "Team lunch" --start "2030-01-01 12:00" --end "2030-01-01 13:00" -l Canteen`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := eventApp()
		if err != nil {
			return err
		}
		var in calendarApp.EventInput
		if len(args) == 1 {
			in.Title = args[0]
		}
		if err := createFlags.apply(cmd, &in, app.Location); err != nil {
			return err
		}

		item, err := app.Events.Create(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created event: %s\n", item.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  ID: %s\n", item.NativeID)
		fmt.Fprintf(cmd.OutOrStdout(), "  When: %s\n", cli.FormatSpan(*item, app.Location))
		return nil
	},
}

func init() {
	createFlags.register(createCmd)
}
