package calendar

import (
	"encoding/json"
	"io"

	"github.com/huynnh/calsync/adapter/cli"
	"github.com/spf13/cobra"
)

// Cmd is the calendar command group.
var Cmd = &cobra.Command{
	Use:     "calendar",
	Aliases: []string{"cal"},
	Short:   "Show the merged calendar",
	Long: `Show tasks, events and the connected provider's calendar merged into
day, week and month views.

With --offline the last cached snapshot is shown without contacting the
backend.`,
}

var (
	anchorDate string
	jsonOutput bool
)

func init() {
	Cmd.PersistentFlags().StringVar(&anchorDate, "date", "", "day to show (YYYY-MM-DD, default today)")
	Cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print the view as JSON")

	Cmd.AddCommand(dayCmd)
	Cmd.AddCommand(weekCmd)
	Cmd.AddCommand(monthCmd)
	Cmd.AddCommand(exportCmd)
}

// loadView fills the store and returns a printer for cached or partial results.
func loadView(cmd *cobra.Command) (*cli.App, func(io.Writer), error) {
	app := cli.GetApp()
	if app == nil || app.Projector == nil {
		return nil, nil, cli.ErrNotInitialized
	}
	result, err := app.LoadCalendar(cmd.Context(), cli.Offline())
	if err != nil {
		return nil, nil, err
	}
	notes := func(w io.Writer) { cli.PrintSourceNotes(w, result, app.Location) }
	return app, notes, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
