package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

const (
	daemonStartTimeout = 5 * time.Second
	pidPollInterval    = 50 * time.Millisecond
)

// Spawner hands reminders to the delivery daemon. The daemon reads the
// store itself, so Spawn only makes sure it is running.
type Spawner struct {
	PidPath string
	// Executable defaults to os.Executable().
	Executable string
	// Args start the daemon in the foreground; defaults to "daemon start".
	Args []string
	Log  logger.Logger
	// StartTimeout defaults to 5s.
	StartTimeout time.Duration
}

func (s *Spawner) Spawn(job worker.Job) error {
	return s.EnsureRunning()
}

// EnsureRunning starts the daemon if the pidfile does not name a live
// process and waits for it to claim the pidfile.
func (s *Spawner) EnsureRunning() error {
	if _, running, _ := Status(s.PidPath); running {
		return nil
	}
	if err := s.spawn(); err != nil {
		return err
	}
	timeout := s.StartTimeout
	if timeout <= 0 {
		timeout = daemonStartTimeout
	}
	return waitForPidFile(s.PidPath, timeout)
}

func (s *Spawner) spawn() error {
	executable := s.Executable
	if executable == "" {
		var err error
		executable, err = os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}
	}
	args := s.Args
	if len(args) == 0 {
		args = []string{"daemon", "start"}
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	worker.Detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	if s.Log != nil {
		s.Log.Info("Spawned delivery daemon (PID %d)", cmd.Process.Pid)
	}
	_ = cmd.Process.Release()
	return nil
}

// waitForPidFile polls until a live daemon is recorded or timeout expires.
func waitForPidFile(path string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, running, _ := Status(path); running {
			return nil
		}
		time.Sleep(pidPollInterval)
	}
	return fmt.Errorf("daemon failed to start within %v", timeout)
}

var _ worker.Spawner = (*Spawner)(nil)
