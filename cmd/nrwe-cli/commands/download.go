package commands

import (
	"context"
	"log/slog"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/nrwe"
	"nrwe-scraper/lib/nrwe/download"
	"nrwe-scraper/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Downloads every recorded case document that is not on disk yet.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		store := openStore(cfg)
		defer store.Close()

		runDownload(cmd.Context(), cfg, store)
	},
}

func runDownload(ctx context.Context, cfg nrwe.Config, store casestore.Store) (ok, failed int) {
	links, err := store.Links(ctx)
	if err != nil {
		serviceutil.Fatal("failed to list case links", err)
	}
	client, err := download.NewClient(cfg.DocsDir())
	if err != nil {
		serviceutil.Fatal("failed to create download client", err)
	}

	pw := progressWriter()
	go pw.Render()
	tracker := &progress.Tracker{
		Message: "downloading documents",
		Total:   int64(len(links)),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	client.All(ctx, links, cfg.Concurrency, func(res download.Result) {
		if res.Err != nil {
			failed++
			tracker.IncrementWithError(1)
			return
		}
		ok++
		tracker.Increment(1)
	})
	tracker.MarkAsDone()
	pw.Stop()

	slog.Info("download finished", "ok", ok, "failed", failed)
	return ok, failed
}
