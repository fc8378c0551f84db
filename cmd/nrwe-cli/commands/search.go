package commands

import (
	"context"
	"log/slog"
	"time"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/nrwe"
	"nrwe-scraper/lib/nrwe/search"
	"nrwe-scraper/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

var searchFrom, searchTo *string

func init() {
	searchFrom = searchCmd.Flags().String("from", "1970-01-01", "Start of the date range to search (YYYY-MM-DD).")
	searchTo = searchCmd.Flags().String("to", "2024-12-31", "End of the date range to search (YYYY-MM-DD).")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [--from <date>] [--to <date>]",
	Short: "Searches the court database month by month and records result links.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		runSearch(cmd.Context(), cfg, store, parseDate(*searchFrom), parseDate(*searchTo))
	},
}

func runSearch(ctx context.Context, cfg nrwe.Config, store casestore.Store, from, to time.Time) {
	scraper, err := search.NewScraper(store, search.Options{
		BaseUrl:   cfg.BaseUrl,
		Bin:       cfg.Browser.Bin,
		RemoteUrl: cfg.Browser.RemoteUrl,
		Headful:   cfg.Browser.Headful,
		PageDelay: time.Duration(cfg.PageDelayMs) * time.Millisecond,
	})
	if err != nil {
		serviceutil.Fatal("failed to start browser", err)
	}
	defer scraper.Close()

	pw := progressWriter()
	go pw.Render()
	tracker := &progress.Tracker{
		Message: "searching months",
		Total:   int64(len(search.MonthRanges(from, to))),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	failed := 0
	err = scraper.Run(ctx, from, to, func(r search.DateRange, err error) {
		if err != nil {
			failed++
			tracker.IncrementWithError(1)
			return
		}
		tracker.Increment(1)
	})
	tracker.MarkAsDone()
	pw.Stop()
	if err != nil {
		serviceutil.Fatal("search aborted", err)
	}

	slog.Info("search finished", "failed_months", failed)
}
