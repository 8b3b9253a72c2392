//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// killDaemon sends SIGTERM and waits for the process to exit. If it is
// still alive after shutdownTimeout it gets SIGKILL.
func killDaemon(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	deadline := time.Now().Add(shutdownTimeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return nil
		}
		time.Sleep(pollInterval)
	}

	if err := process.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("failed to send SIGKILL: %w", err)
	}
	time.Sleep(500 * time.Millisecond)
	return nil
}
