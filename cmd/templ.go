package cmd

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`

const DESCRIPTION = `
Reminder schedules system-level notifications at a chosen time.
It hands reminders to the remote coordinator when one is running
and otherwise keeps them in a local store, delivering each one
with the platform's native alert.
`

const (
	ServeDescription = `The serve command runs the MCP tool server on stdin/stdout.
Reminders left over from an earlier run are re-armed first.

Example:
        reminder serve

`
	CreateDescription = `The create command schedules a reminder. The time can be an
ISO datetime or a relative delay such as "in 30 minutes".

Example:
        reminder create --title "Stand-up" --message "Daily sync" --time "in 30 minutes"

`
	ListDescription = `The list command displays active reminders with their ids
and the time left before each fires.

Example:
        reminder list

`
	CancelDescription = `The cancel command removes a pending reminder using the id
shown by "reminder list".

Example:
        reminder cancel reminder_1730200000000_3f2a9c1b7

`
	DaemonDescription = `The daemon command manages the delivery daemon, a single
background process that delivers every stored reminder when the
delivery mode is "daemon".

Example:
        reminder daemon start
        reminder daemon status
        reminder daemon stop

`
)
