package main

import (
	"context"
	"log/slog"
	"registrylens-backend/lib/restyutil"
	"registrylens-backend/lib/scrapers/companieshouse"
	"registrylens-backend/lib/serviceutil"
	"registrylens-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "registrylens-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	companieshouse.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/companieshouse"),
	)
}
