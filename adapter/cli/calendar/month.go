package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Show a month grid",
	Long: `Show a month grid with the number of items on each day, followed by
the days that have items.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, notes, err := loadView(cmd)
		if err != nil {
			return err
		}
		anchor, err := cli.ParseDate(anchorDate, app.Location, app.Now())
		if err != nil {
			return err
		}

		view := app.Projector.MonthView(anchor)
		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, view)
		}
		notes(out)
		fmt.Fprintf(out, "%s\n", view.Month.Format("January 2006"))

		var header []string
		for i := 0; i < 7; i++ {
			header = append(header, fmt.Sprintf("%-7s", time.Weekday((int(app.Projector.WeekStart())+i)%7).String()[:3]))
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(header, ""), " "))

		var row []string
		for i, cell := range view.Cells {
			if cell == nil {
				row = append(row, fmt.Sprintf("%-7s", ""))
			} else {
				label := fmt.Sprintf("%2d", cell.Day.Day())
				if cell.Total > 0 {
					label += fmt.Sprintf("(%d)", cell.Total)
				}
				row = append(row, fmt.Sprintf("%-7s", label))
			}
			if (i+1)%7 == 0 || i == len(view.Cells)-1 {
				fmt.Fprintln(out, strings.TrimRight(strings.Join(row, ""), " "))
				row = row[:0]
			}
		}
		fmt.Fprintln(out)

		for _, cell := range view.Cells {
			if cell != nil && cell.Total > 0 {
				cli.PrintBucket(out, *cell, app.Location)
			}
		}
		return nil
	},
}
