package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/warpdl/reminder/pkg/logger"
)

// Spawner starts a Delivery Worker for a job and returns without waiting
// for it.
type Spawner interface {
	Spawn(job Job) error
}

// InlineSpawner runs workers as goroutines of the current process. They
// die with it, so it suits long-lived hosts and tests.
type InlineSpawner struct {
	ctx    context.Context
	worker *Worker
	wg     sync.WaitGroup
}

func NewInlineSpawner(ctx context.Context, w *Worker) *InlineSpawner {
	return &InlineSpawner{ctx: ctx, worker: w}
}

func (s *InlineSpawner) Spawn(job Job) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Run(s.ctx, job); err != nil && !errors.Is(err, context.Canceled) {
			s.worker.log().Error("Inline worker for %s: %v", job.ID, err)
		}
	}()
	return nil
}

// Wait blocks until every spawned worker has returned.
func (s *InlineSpawner) Wait() {
	s.wg.Wait()
}

// WorkerCommand is the hidden CLI subcommand that runs a single job.
const WorkerCommand = "worker"

// Args returns the command line for a detached worker process.
func (j Job) Args() []string {
	return []string{
		WorkerCommand,
		"--store", j.StorePath,
		"--backend", j.Backend,
		"--id", j.ID,
		"--title", j.Title,
		"--message", j.Message,
		"--delay", strconv.FormatInt(j.Delay.Milliseconds(), 10),
		"--log", j.LogPath,
	}
}

// ProcessSpawner re-executes the binary as a detached worker process that
// outlives the caller.
type ProcessSpawner struct {
	// Executable defaults to os.Executable().
	Executable string
	Log        logger.Logger
}

func (p *ProcessSpawner) Spawn(job Job) error {
	executable := p.Executable
	if executable == "" {
		var err error
		executable, err = os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}
	}

	cmd := exec.Command(executable, job.Args()...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	Detach(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	if p.Log != nil {
		p.Log.Info("Spawned worker pid %d for %s", cmd.Process.Pid, job.ID)
	}
	_ = cmd.Process.Release()
	return nil
}
