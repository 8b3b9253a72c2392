//go:build unix

package worker

import (
	"os/exec"
	"syscall"
)

// Detach moves cmd into its own process group so it survives the
// spawner exiting.
func Detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
