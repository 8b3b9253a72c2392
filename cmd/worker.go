package cmd

import (
	"context"
	"errors"

	"github.com/urfave/cli"
	"github.com/warpdl/reminder/cmd/common"
	"github.com/warpdl/reminder/internal/config"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

var workerFlags = []cli.Flag{
	cli.StringFlag{Name: "store", Usage: "store location"},
	cli.StringFlag{Name: "backend", Value: config.BackendJSON, Usage: "store backend"},
	cli.StringFlag{Name: "id", Usage: "reminder id"},
	cli.StringFlag{Name: "title", Usage: "notification title"},
	cli.StringFlag{Name: "message", Usage: "notification body"},
	cli.Int64Flag{Name: "delay", Usage: "milliseconds to wait before firing"},
	cli.StringFlag{Name: "log", Usage: "JSON log file"},
}

// runWorker is the body of a detached Delivery Worker process.
func runWorker(ctx *cli.Context) error {
	job := worker.Job{
		StorePath: ctx.String("store"),
		Backend:   ctx.String("backend"),
		ID:        ctx.String("id"),
		Title:     ctx.String("title"),
		Message:   ctx.String("message"),
		Delay:     reminder.Millis(ctx.Int64("delay")),
		LogPath:   ctx.String("log"),
	}
	if job.ID == "" || job.StorePath == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("worker needs --id and --store"))
	}

	// Jobs re-armed at startup carry no log path; fall back to the
	// configured sink in debug mode.
	cfg, cfgErr := loadConfig()
	if job.LogPath == "" && cfgErr == nil && cfg.Log.Debug {
		job.LogPath = cfg.LogPath()
	}
	var log logger.Logger = logger.NewNopLogger()
	if job.LogPath != "" {
		if fl, err := logger.NewFileLogger(job.LogPath, "worker"); err == nil {
			log = fl
		}
	}
	defer log.Close()

	st, err := store.Open(job.Backend, job.StorePath, log)
	if err != nil {
		log.Error("Worker %s: open store: %v", job.ID, err)
		common.PrintRuntimeErr(ctx, "worker", "open_store", err)
		return nil
	}
	defer st.Close()

	w := &worker.Worker{
		Store:            st,
		Notifier:         newNotifier(),
		Log:              log,
		VerifyBeforeFire: cfgErr == nil && cfg.Delivery.SkipCancelled,
	}

	sctx, stop := setupShutdownHandler()
	defer stop()

	log.Info("Worker armed for %s, fires in %s", job.ID, job.Delay)
	if err := w.Run(sctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warning("Worker for %s stopped before firing", job.ID)
			return nil
		}
		log.Error("Worker for %s: %v", job.ID, err)
		common.PrintRuntimeErr(ctx, "worker", "run", err)
	}
	return nil
}
