package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/warpdl/reminder/internal/config"
	"github.com/warpdl/reminder/internal/daemon"
	"github.com/warpdl/reminder/internal/notify"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

// Seams replaced by tests.
var (
	loadConfig  = config.Load
	newNotifier = notify.Default
	timeNow     = time.Now

	stdin  io.Reader      = os.Stdin
	stdout io.WriteCloser = os.Stdout
	stderr io.Writer      = os.Stderr

	// executablePath is re-executed for workers and the daemon; empty
	// means os.Executable().
	executablePath string
)

type envOptions struct {
	component string
	// console logs to stderr even outside debug mode.
	console bool
	// fileLog writes the JSON log file even outside debug mode.
	fileLog bool
}

// environment bundles what the commands share: configuration, logging and
// the open store.
type environment struct {
	cfg   *config.Config
	log   logger.Logger
	store store.Store
}

func setupEnv(opts envOptions) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	log := newLogger(cfg, opts)
	st, err := store.Open(cfg.Store.Backend, cfg.StorePath(), log)
	if err != nil {
		log.Close()
		return nil, err
	}
	return &environment{cfg: cfg, log: log, store: st}, nil
}

func newLogger(cfg *config.Config, opts envOptions) logger.Logger {
	var sinks []logger.Logger
	if opts.console || cfg.Log.Debug {
		sinks = append(sinks, logger.NewConsoleLogger(stderr, opts.component))
	}
	if opts.fileLog || cfg.Log.Debug {
		fl, err := logger.NewFileLogger(cfg.LogPath(), opts.component)
		if err != nil {
			fmt.Fprintf(stderr, "%s: log file unavailable: %v\n", opts.component, err)
		} else {
			sinks = append(sinks, fl)
		}
	}
	if len(sinks) == 0 {
		return logger.NewNopLogger()
	}
	return logger.NewMultiLogger(sinks...)
}

func (e *environment) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Warning("Closing store: %v", err)
	}
	_ = e.log.Close()
}

func (e *environment) worker(verify bool) *worker.Worker {
	return &worker.Worker{
		Store:            e.store,
		Notifier:         newNotifier(),
		Log:              e.log,
		VerifyBeforeFire: verify,
	}
}

// spawner returns the spawner for the configured delivery mode together
// with a wait func that blocks until in-process workers have finished.
func (e *environment) spawner(ctx context.Context) (worker.Spawner, func()) {
	switch e.cfg.Delivery.Mode {
	case config.ModeInline:
		sp := worker.NewInlineSpawner(ctx, e.worker(e.cfg.Delivery.SkipCancelled))
		return sp, sp.Wait
	case config.ModeDaemon:
		return &daemon.Spawner{
			PidPath:    e.cfg.PidPath(),
			Executable: executablePath,
			Log:        e.log,
		}, func() {}
	default:
		return &worker.ProcessSpawner{Executable: executablePath, Log: e.log}, func() {}
	}
}
