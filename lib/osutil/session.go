package osutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext derives a context that is cancelled on SIGINT or
// SIGTERM. A second signal exits the process outright so a stuck
// shutdown can still be interrupted.
func SignalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		<-sigs
		os.Exit(1)
	}()

	return ctx
}
