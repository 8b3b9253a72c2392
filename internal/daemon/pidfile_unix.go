//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

// isProcessRunning uses signal 0 to check process existence.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
