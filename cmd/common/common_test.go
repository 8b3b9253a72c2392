package common

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/urfave/cli"
)

func newTestContext(args ...string) *cli.Context {
	app := cli.NewApp()
	app.Name = "reminder"
	app.HelpName = "reminder"
	app.Version = "test"
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	_ = set.Parse(args)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "cmd"}
	return ctx
}

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := Out
	Out = &buf
	t.Cleanup(func() { Out = old })
	return &buf
}

func TestPrintRuntimeErr(t *testing.T) {
	out := captureOut(t)
	PrintRuntimeErr(newTestContext(), "create", "save", errors.New("boom"))
	if got := out.String(); got != "reminder: create[save]: boom\n" {
		t.Errorf("got %q", got)
	}

	out.Reset()
	PrintRuntimeErr(nil, "cmd", "action", nil)
	if !strings.Contains(out.String(), "err is nil") {
		t.Errorf("got %q", out.String())
	}
}

func TestPrintReport(t *testing.T) {
	out := captureOut(t)
	PrintReport("No active reminders.")
	if out.String() != "No active reminders.\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestPrintErrWithHelp(t *testing.T) {
	captureOut(t)
	called := false
	prev := SetShowAppHelpAndExit(func(*cli.Context, int) { called = true })
	defer SetShowAppHelpAndExit(prev)

	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("oops")},
		{"help requested", errors.New("flag: help requested")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			if err := PrintErrWithHelp(newTestContext(), tt.err); err != nil {
				t.Fatalf("PrintErrWithHelp: %v", err)
			}
			if !called {
				t.Fatal("expected app help")
			}
		})
	}
}

func TestPrintErrWithHelpNil(t *testing.T) {
	if err := PrintErrWithHelp(newTestContext(), nil); err != nil {
		t.Fatalf("PrintErrWithHelp(nil) = %v", err)
	}
}

func TestPrintErrWithHelpVersion(t *testing.T) {
	out := captureOut(t)
	old := VersionCmdStr
	VersionCmdStr = "reminder v0"
	defer func() { VersionCmdStr = old }()

	if err := PrintErrWithHelp(newTestContext(), errors.New("bad -version")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !strings.Contains(out.String(), "reminder v0") {
		t.Errorf("got %q", out.String())
	}
}

func TestPrintErrWithCmdHelp(t *testing.T) {
	out := captureOut(t)
	tests := []struct {
		name    string
		helpErr error
	}{
		{"help shown", nil},
		{"help fails", errors.New("no such command")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			called := false
			prev := SetShowCommandHelp(func(*cli.Context, string) error {
				called = true
				return tt.helpErr
			})
			defer SetShowCommandHelp(prev)

			if err := PrintErrWithCmdHelp(newTestContext(), errors.New("oops")); err != nil {
				t.Fatalf("PrintErrWithCmdHelp: %v", err)
			}
			if !called {
				t.Fatal("expected command help")
			}
			if !strings.HasPrefix(out.String(), "reminder: oops\n") {
				t.Errorf("got %q", out.String())
			}
			if tt.helpErr != nil && !strings.Contains(out.String(), "no such command") {
				t.Errorf("help error not printed: %q", out.String())
			}
		})
	}
}

func TestUsageErrorCallback(t *testing.T) {
	captureOut(t)
	cmdHelp, appHelp := false, false
	prevCmd := SetShowCommandHelp(func(*cli.Context, string) error { cmdHelp = true; return nil })
	defer SetShowCommandHelp(prevCmd)
	prevApp := SetShowAppHelpAndExit(func(*cli.Context, int) { appHelp = true })
	defer SetShowAppHelpAndExit(prevApp)

	if err := UsageErrorCallback(newTestContext(), errors.New("oops"), false); err != nil {
		t.Fatal(err)
	}
	if !cmdHelp {
		t.Error("command usage error should show command help")
	}

	ctx := newTestContext()
	ctx.Command = cli.Command{}
	if err := UsageErrorCallback(ctx, errors.New("oops"), false); err != nil {
		t.Fatal(err)
	}
	if !appHelp {
		t.Error("app usage error should show app help")
	}
}

func TestHelp(t *testing.T) {
	captureOut(t)
	appHelp := false
	prevApp := SetShowAppHelpAndExit(func(*cli.Context, int) { appHelp = true })
	defer SetShowAppHelpAndExit(prevApp)
	var asked string
	prevCmd := SetShowCommandHelp(func(_ *cli.Context, name string) error {
		asked = name
		if name == "bogus" {
			return errors.New("no help topic")
		}
		return nil
	})
	defer SetShowCommandHelp(prevCmd)

	if err := Help(newTestContext()); err != nil || !appHelp {
		t.Errorf("Help() = %v, app help shown = %v", err, appHelp)
	}
	if err := Help(newTestContext("list")); err != nil || asked != "list" {
		t.Errorf("Help(list) = %v, asked %q", err, asked)
	}
	if err := Help(newTestContext("bogus")); err == nil {
		t.Error("Help(bogus) should fail")
	}
}

func TestGetVersion(t *testing.T) {
	out := captureOut(t)
	old := VersionCmdStr
	VersionCmdStr = "reminder 1.0.0"
	defer func() { VersionCmdStr = old }()

	if err := GetVersion(newTestContext()); err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if out.String() != "reminder 1.0.0\n" {
		t.Errorf("got %q", out.String())
	}
}
