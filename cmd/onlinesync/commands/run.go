package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"onlinesync/internal/di"
	"onlinesync/internal/models"
	"onlinesync/internal/services"
)

var runJSON bool

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the cycle summary as JSON.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--json]",
	Short: "Runs a single sync cycle and prints its summary.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := di.InitApp(flags)
		if err != nil {
			return err
		}
		defer cleanup()

		summary := app.RunOnce(cmd.Context())
		if err := printSummary(os.Stdout, summary, runJSON); err != nil {
			return err
		}
		return services.CycleError(summary)
	},
}

func printSummary(w io.Writer, summary models.Summary, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(summary.Report(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Cycle %s (%s)", summary.CycleID, summary.Elapsed.Round(time.Millisecond)))
	t.AppendHeader(table.Row{"Sink", "New", "Updated", "Unchanged", "Failed", "Error"})
	for _, s := range summary.Sinks {
		t.AppendRow(table.Row{s.Sink, s.New, s.Updated, s.Unchanged, s.Failed, s.Error})
	}
	t.AppendFooter(table.Row{"All sinks", summary.New, summary.Updated, summary.Unchanged, summary.Failed, ""})
	t.Render()

	_, err := fmt.Fprintf(w, "Online users: %d, scraped: %d. Sink counts are per sink; failed also includes scrape failures.\n",
		summary.UsersFound, summary.Scraped)
	if err == nil && summary.Err != nil {
		_, err = fmt.Fprintf(w, "Error: %s\n", summary.Err)
	}
	return err
}
