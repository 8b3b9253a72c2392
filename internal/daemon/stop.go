package daemon

import (
	"fmt"
	"time"
)

const (
	shutdownTimeout = 5 * time.Second
	pollInterval    = 100 * time.Millisecond
)

// Stop signals the daemon recorded at pidPath and waits for it to exit,
// killing it after a grace period. It returns the stopped PID, or
// ErrNotRunning when no live daemon is recorded.
func Stop(pidPath string) (int, error) {
	pid, running, err := Status(pidPath)
	if err != nil {
		return 0, err
	}
	if !running {
		if pid != 0 {
			_ = RemovePidFile(pidPath)
		}
		return 0, ErrNotRunning
	}
	if err := killDaemon(pid); err != nil {
		return pid, fmt.Errorf("stop daemon (PID %d): %w", pid, err)
	}
	return pid, nil
}
