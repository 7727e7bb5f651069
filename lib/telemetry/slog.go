package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide logger. Verbose mode pulls the
// level down to debug, which also turns on the scrapers' request
// dumps downstream.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
