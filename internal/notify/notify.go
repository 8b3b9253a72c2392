// Package notify renders reminders as native desktop alerts.
//
// The variant is picked once from the target OS. Every variant shells out
// to a platform tool through a Runner, which tests replace to capture the
// invocation.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrUnsupportedPlatform is returned by Unsupported.Notify.
var ErrUnsupportedPlatform = errors.New("desktop notifications are not supported on this platform")

// Notifier displays a single alert. Notify blocks until the platform tool
// returns.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the command with os/exec and folds its output into the
// returned error.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := bytes.TrimSpace(out); len(msg) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// New returns the notifier for goos. A nil run uses ExecRunner.
func New(goos string, run Runner) Notifier {
	if run == nil {
		run = ExecRunner
	}
	switch goos {
	case "darwin":
		return &Dialog{Run: run}
	case "windows":
		return &Toast{Run: run}
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos":
		return &Desktop{Run: run}
	default:
		return &Unsupported{GOOS: goos}
	}
}

// Default returns the notifier for the running OS.
func Default() Notifier {
	return New(runtime.GOOS, nil)
}

// Unsupported is used where no notification tool is known.
type Unsupported struct {
	GOOS string
}

func (u *Unsupported) Notify(context.Context, string, string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, u.GOOS)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, title, message string) error

func (f Func) Notify(ctx context.Context, title, message string) error {
	return f(ctx, title, message)
}
