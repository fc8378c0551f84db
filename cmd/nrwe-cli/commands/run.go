package commands

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runFrom, runTo *string

func init() {
	runFrom = runCmd.Flags().String("from", "1970-01-01", "Start of the date range to search (YYYY-MM-DD).")
	runTo = runCmd.Flags().String("to", "2024-12-31", "End of the date range to search (YYYY-MM-DD).")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--from <date>] [--to <date>]",
	Short: "Runs the full pipeline: search, download, then parse.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		t1 := time.Now()
		runSearch(cmd.Context(), cfg, store, parseDate(*runFrom), parseDate(*runTo))
		ok, failed := runDownload(cmd.Context(), cfg, store)
		result := runParse(cmd.Context(), cfg)
		t2 := time.Now()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Stage", "Ok", "Failed"})
		t.AppendRow(table.Row{"download", ok, failed})
		t.AppendRow(table.Row{"parse", result.Parsed, result.Failed})
		t.AppendFooter(table.Row{"total time", t2.Sub(t1).Round(time.Second), ""})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
