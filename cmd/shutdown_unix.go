//go:build !windows

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// setupShutdownHandler returns a context that is cancelled when SIGTERM or
// SIGINT is received, or when the returned cancel func is called.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
		cancel()
	}()

	return ctx, cancel
}
