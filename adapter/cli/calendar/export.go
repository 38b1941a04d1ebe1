package calendar

import (
	"fmt"
	"os"

	"github.com/huynnh/calsync/adapter/cli"
	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	"github.com/huynnh/calsync/internal/calendar/infrastructure/ics"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportDays   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the merged calendar as iCalendar",
	Long: `Export the merged calendar to ICS (iCalendar) format for import into
other calendar apps. Items with a start and end become events, the rest
become to-dos.

Examples:
  calsync calendar export                    # Next 30 days to stdout
  calsync calendar export -o cal.ics         # Export to file
  calsync calendar export --date 2030-01-01 --days 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportDays <= 0 {
			return fmt.Errorf("--days must be positive")
		}
		app, _, err := loadView(cmd)
		if err != nil {
			return err
		}
		from, err := cli.ParseDate(anchorDate, app.Location, app.Now())
		if err != nil {
			return err
		}
		from = calendarApp.StartOfDay(from)
		to := from.AddDate(0, 0, exportDays)
		items := app.Aggregator.Store().Items()

		if exportOutput == "" {
			return ics.Write(cmd.OutOrStdout(), items, from, to)
		}
		if err := os.WriteFile(exportOutput, []byte(ics.Export(items, from, to)), 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days to %s\n", exportDays, exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportDays, "days", "d", 30, "number of days to export")
}
