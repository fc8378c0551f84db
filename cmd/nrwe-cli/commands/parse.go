package commands

import (
	"context"
	"log/slog"

	"nrwe-scraper/lib/nrwe"
	"nrwe-scraper/lib/nrwe/parse"
	"nrwe-scraper/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parses downloaded case documents into a JSON Lines file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		runParse(cmd.Context(), cfg)
	},
}

func runParse(ctx context.Context, cfg nrwe.Config) parse.BatchResult {
	docs, err := parse.ListDocuments(cfg.DocsDir())
	if err != nil {
		serviceutil.Fatal("failed to list documents", err)
	}

	pw := progressWriter()
	go pw.Render()
	tracker := &progress.Tracker{
		Message: "parsing documents",
		Total:   int64(len(docs)),
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	result, err := parse.ParseDir(ctx, cfg.DocsDir(), cfg.ParsedPath(), func(rel string) {
		tracker.Increment(1)
	})
	tracker.MarkAsDone()
	pw.Stop()
	if err != nil {
		serviceutil.Fatal("parsing aborted", err)
	}

	slog.Info("parsing finished",
		"parsed", result.Parsed,
		"failed", result.Failed,
		"output", cfg.ParsedPath())
	return result
}
