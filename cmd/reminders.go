package cmd

import (
	"context"
	"errors"

	"github.com/urfave/cli"
	"github.com/warpdl/reminder/cmd/common"
	"github.com/warpdl/reminder/internal/dispatch"
	"github.com/warpdl/reminder/internal/timeparse"
)

var createFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "title, t",
		Usage: "title of the reminder",
	},
	cli.StringFlag{
		Name:  "message, m",
		Usage: "detailed message shown in the notification",
	},
	cli.StringFlag{
		Name:  "time, at",
		Usage: `when to fire, e.g. "in 30 minutes" or "2025-10-29T15:30:00"`,
	},
}

func create(ctx *cli.Context) error {
	expr := ctx.String("time")
	if expr == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no time provided"))
	}
	trigger, err := timeparse.Resolve(expr, timeNow())
	if err != nil {
		common.PrintReport(dispatch.ErrorReport(err))
		return nil
	}
	req := dispatch.CreateRequest{
		Title:   ctx.String("title"),
		Message: ctx.String("message"),
		Trigger: trigger,
	}
	return withDispatcher(ctx, "create", func(c context.Context, svc dispatch.Service) string {
		receipt, err := svc.Create(c, req)
		if err != nil {
			return dispatch.ErrorReport(err)
		}
		return dispatch.CreateReport(receipt)
	})
}

func list(ctx *cli.Context) error {
	return withDispatcher(ctx, "list", func(c context.Context, svc dispatch.Service) string {
		listing, err := svc.List(c)
		if err != nil {
			return dispatch.ErrorReport(err)
		}
		return dispatch.ListReport(listing)
	})
}

func cancelReminder(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return common.PrintErrWithCmdHelp(ctx, errors.New("no id provided"))
	} else if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	return withDispatcher(ctx, "cancel", func(c context.Context, svc dispatch.Service) string {
		outcome, err := svc.Cancel(c, id)
		if err != nil {
			return dispatch.ErrorReport(err)
		}
		return dispatch.CancelReport(outcome)
	})
}

// withDispatcher sets up the environment, runs op against the dispatcher
// and prints its report. With inline delivery it then waits for the
// spawned workers, so the process lives until the reminder has fired.
func withDispatcher(ctx *cli.Context, name string, op func(context.Context, dispatch.Service) string) error {
	env, err := setupEnv(envOptions{component: name})
	if err != nil {
		common.PrintRuntimeErr(ctx, name, "setup", err)
		return nil
	}
	defer env.Close()

	sctx, stop := setupShutdownHandler()
	defer stop()

	sp, wait := env.spawner(sctx)
	svc := dispatch.New(env.cfg, env.store, sp, env.log)
	common.PrintReport(op(sctx, svc))
	wait()
	return nil
}
