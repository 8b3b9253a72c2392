//go:build windows

package cmd

import (
	"context"
	"os"
	"os/signal"
)

// setupShutdownHandler returns a context that is cancelled on an interrupt
// or when the returned cancel func is called. syscall.SIGTERM is not
// delivered on Windows.
func setupShutdownHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

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
