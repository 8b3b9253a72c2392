// Package common provides shared helpers for the reminder CLI commands:
// error printing, help display and report output.
package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli"
)

// VersionCmdStr holds the formatted version string displayed by the version
// command. Execute fills it from the build information.
var VersionCmdStr string

// Out receives command reports. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

var (
	showAppHelpAndExit = cli.ShowAppHelpAndExit
	showCommandHelp    = cli.ShowCommandHelp
)

// Help displays help for the application or for the command named in the
// first argument.
func Help(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		fmt.Fprintf(Out, "%s %s\n", ctx.App.Name, ctx.App.Version)
		showAppHelpAndExit(ctx, 0)
		return nil
	}
	return showCommandHelp(ctx, arg)
}

// GetVersion prints VersionCmdStr.
func GetVersion(ctx *cli.Context) error {
	fmt.Fprintln(Out, VersionCmdStr)
	return nil
}

// PrintRuntimeErr prints "<app>: cmd[action]: err". ctx may be nil, in
// which case the program name comes from os.Args[0].
func PrintRuntimeErr(ctx *cli.Context, cmd, action string, err error) {
	if err == nil {
		fmt.Fprintln(Out, "err is nil", "[", cmd, "|", action, "]")
		return
	}
	var name string
	if ctx != nil && ctx.App != nil {
		name = ctx.App.HelpName
	} else {
		name = os.Args[0]
	}
	fmt.Fprintf(Out, "%s: %s[%s]: %s\n", name, cmd, action, err.Error())
}

// PrintReport writes a tool report followed by a newline.
func PrintReport(report string) {
	fmt.Fprintln(Out, report)
}

// PrintErrWithCmdHelp prints err followed by the current command's help.
func PrintErrWithCmdHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			if err := showCommandHelp(ctx, ctx.Command.Name); err != nil {
				fmt.Fprintln(Out, err.Error())
			}
		},
	)
}

// PrintErrWithHelp prints err followed by the application help and exits
// with status 1.
func PrintErrWithHelp(ctx *cli.Context, err error) error {
	return printErrWithCallback(
		ctx,
		err,
		func() {
			showAppHelpAndExit(ctx, 1)
		},
	)
}

func printErrWithCallback(ctx *cli.Context, err error, callback func()) error {
	if err == nil {
		return nil
	}
	estr := strings.ToLower(err.Error())
	if estr == "flag: help requested" {
		return Help(ctx)
	}
	if strings.Contains(estr, "-version") {
		return GetVersion(ctx)
	}
	fmt.Fprintf(Out, "%s: %s\n\n", ctx.App.HelpName, err.Error())
	callback()
	return nil
}

// UsageErrorCallback is the OnUsageError hook for the app and its commands.
func UsageErrorCallback(ctx *cli.Context, err error, _ bool) error {
	if ctx.Command.Name != "" {
		return PrintErrWithCmdHelp(ctx, err)
	}
	return PrintErrWithHelp(ctx, err)
}

// SetShowAppHelpAndExit replaces the app help printer and returns the
// previous one. Tests use it to avoid os.Exit.
func SetShowAppHelpAndExit(fn func(*cli.Context, int)) func(*cli.Context, int) {
	prev := showAppHelpAndExit
	showAppHelpAndExit = fn
	return prev
}

// SetShowCommandHelp replaces the command help printer and returns the
// previous one.
func SetShowCommandHelp(fn func(*cli.Context, string) error) func(*cli.Context, string) error {
	prev := showCommandHelp
	showCommandHelp = fn
	return prev
}
