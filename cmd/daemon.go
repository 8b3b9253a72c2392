package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/reminder/cmd/common"
	"github.com/warpdl/reminder/internal/daemon"
	"github.com/warpdl/reminder/pkg/logger"
)

// daemonStart runs the delivery daemon in the foreground until SIGTERM or
// SIGINT. It is what the daemon spawner executes detached.
func daemonStart(ctx *cli.Context) error {
	env, err := setupEnv(envOptions{component: "daemon", console: true, fileLog: true})
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "setup", err)
		return nil
	}
	defer env.Close()

	log := env.log
	if pl := platformLogger(); pl != nil {
		log = logger.NewMultiLogger(env.log, pl)
		defer pl.Close()
	}

	runner := daemon.New(&daemon.Config{
		PidPath:        env.cfg.PidPath(),
		Backend:        env.cfg.Store.Backend,
		LogPath:        env.cfg.LogPath(),
		ResyncInterval: env.cfg.Delivery.ResyncInterval,
	}, &daemon.Dependencies{
		Store:    env.store,
		Notifier: newNotifier(),
		Log:      log,
		Now:      timeNow,
	})

	sctx, stop := setupShutdownHandler()
	defer stop()

	if err := runner.Start(sctx); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			fmt.Fprintln(common.Out, "Daemon is already running")
			return nil
		}
		common.PrintRuntimeErr(ctx, "daemon", "start", err)
	}
	return nil
}

func daemonStop(ctx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "config", err)
		return nil
	}
	pid, err := daemon.Stop(cfg.PidPath())
	switch {
	case errors.Is(err, daemon.ErrNotRunning):
		fmt.Fprintln(common.Out, "Daemon is not running")
	case err != nil:
		common.PrintRuntimeErr(ctx, "daemon", "stop", err)
	default:
		// The daemon removes its own pidfile on the way out.
		fmt.Fprintf(common.Out, "Daemon stopped (PID %d)\n", pid)
	}
	return nil
}

func daemonStatus(ctx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "config", err)
		return nil
	}
	pid, running, err := daemon.Status(cfg.PidPath())
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "status", err)
		return nil
	}
	if running {
		fmt.Fprintf(common.Out, "Daemon is running (PID %d)\n", pid)
	} else {
		fmt.Fprintln(common.Out, "Daemon is not running")
	}
	return nil
}
