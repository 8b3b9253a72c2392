package cmd

import (
	"github.com/urfave/cli"
	"github.com/warpdl/reminder/cmd/common"
	"github.com/warpdl/reminder/internal/dispatch"
	"github.com/warpdl/reminder/internal/mcp"
)

// serve runs the MCP front door until stdin closes or a shutdown signal
// arrives. stdout carries protocol frames, so logs go to stderr.
func serve(ctx *cli.Context) error {
	env, err := setupEnv(envOptions{component: "mcp", console: true})
	if err != nil {
		common.PrintRuntimeErr(ctx, "serve", "setup", err)
		return nil
	}
	defer env.Close()

	sctx, stop := setupShutdownHandler()
	defer stop()

	sp, wait := env.spawner(sctx)
	if _, err := dispatch.Reconcile(env.store, sp, timeNow(), env.log); err != nil {
		env.log.Error("Startup reconcile failed: %v", err)
	}

	svc := dispatch.New(env.cfg, env.store, sp, env.log)
	srv := mcp.NewServer(svc, currentBuildArgs.Version, env.log)
	srv.Now = timeNow
	if err := srv.Serve(sctx, stdin, stdout); err != nil {
		env.log.Error("MCP server stopped: %v", err)
	}

	// Inline workers die with the process; their records stay in the
	// store and are re-armed by the next reconcile.
	stop()
	wait()
	env.log.Info("MCP server exited")
	return nil
}
