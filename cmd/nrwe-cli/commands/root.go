package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"nrwe-scraper/lib/casestore"
	"nrwe-scraper/lib/nrwe"
	"nrwe-scraper/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nrwe-cli",
	Short: "nrwe-cli scrapes, downloads and parses NRWE court decisions.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() nrwe.Config {
	cfg, err := nrwe.LoadConfig("nrwe.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openStore(cfg nrwe.Config) casestore.Store {
	err := os.MkdirAll(cfg.DataDir, 0755)
	if err != nil {
		serviceutil.Fatal("failed to create data directory", err)
	}
	store, err := casestore.Open(cfg.StorePath())
	if err != nil {
		serviceutil.Fatal("failed to open case store", err)
	}
	return store
}

func parseDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		serviceutil.Fatal("failed to parse date, expected YYYY-MM-DD", err)
	}
	return t
}

func progressWriter() progress.Writer {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	return pw
}
