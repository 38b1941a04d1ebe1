package calendar

import (
	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show one day",
	Long: `Show one day. Each source shows at most two items; the rest are
summarised as "+N thêm".

Examples:
  calsync calendar day
  calsync calendar day --date 2030-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, notes, err := loadView(cmd)
		if err != nil {
			return err
		}
		day, err := cli.ParseDate(anchorDate, app.Location, app.Now())
		if err != nil {
			return err
		}

		bucket := app.Projector.DayBucket(day)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, bucket)
		}
		notes(out)
		cli.PrintBucket(out, bucket, app.Location)
		return nil
	},
}
