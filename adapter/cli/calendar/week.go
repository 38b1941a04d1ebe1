package calendar

import (
	"fmt"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week around a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, notes, err := loadView(cmd)
		if err != nil {
			return err
		}
		anchor, err := cli.ParseDate(anchorDate, app.Location, app.Now())
		if err != nil {
			return err
		}

		view := app.Projector.WeekView(anchor)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, view)
		}
		notes(out)
		fmt.Fprintf(out, "Week of %s\n\n", view.Start.Format(cli.DateLayout))
		for _, bucket := range view.Buckets {
			cli.PrintBucket(out, bucket, app.Location)
		}
		return nil
	},
}
