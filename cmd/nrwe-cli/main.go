package main

import (
	"context"

	"nrwe-scraper/cmd/nrwe-cli/commands"
	"nrwe-scraper/lib/telemetry"
	"nrwe-scraper/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "nrwe-cli")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
