package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/reminder/cmd/common"
	"github.com/warpdl/reminder/internal/worker"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "reminder",
		HelpName:              "reminder",
		Usage:                 "Schedule system notifications from your assistant.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "reminder <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:               "serve",
				Usage:              "run the MCP tool server on stdio",
				Description:        ServeDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             serve,
			},
			{
				Name:               "create",
				Aliases:            []string{"c"},
				Usage:              "schedule a new reminder",
				Description:        CreateDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             create,
				Flags:              createFlags,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "display active reminders",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             list,
			},
			{
				Name:               "cancel",
				Aliases:            []string{"x"},
				Usage:              "cancel a reminder by id",
				UsageText:          "cancel <id>",
				Description:        CancelDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             cancelReminder,
			},
			{
				Name:               "daemon",
				Usage:              "manage the delivery daemon",
				Description:        DaemonDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Subcommands: []cli.Command{
					{
						Name:   "start",
						Usage:  "run the delivery daemon in the foreground",
						Action: daemonStart,
					},
					{
						Name:   "stop",
						Usage:  "stop the running delivery daemon",
						Action: daemonStop,
					},
					{
						Name:   "status",
						Usage:  "report whether the delivery daemon is running",
						Action: daemonStatus,
					},
				},
			},
			{
				Name:         worker.WorkerCommand,
				Hidden:       true,
				OnUsageError: common.UsageErrorCallback,
				Action:       runWorker,
				Flags:        workerFlags,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of reminder",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		Action:      common.Help,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
