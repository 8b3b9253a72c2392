package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/warpdl/reminder/internal/reminder"
)

// Dialog shows a modal AppleScript dialog on macOS. Dialogs stay on screen
// until dismissed, unlike Notification Center banners.
type Dialog struct {
	Run Runner
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// DialogScript returns the AppleScript that displays the alert.
func DialogScript(title, message string) string {
	return fmt.Sprintf(
		`display dialog "%s" with title "%s" with icon caution buttons {"OK"} default button "OK"`,
		appleScriptEscaper.Replace(message), appleScriptEscaper.Replace(title),
	)
}

// Notify runs osascript. osascript exits non-zero when the dialog is
// dismissed or gives up, which is not a failure; only a missing binary is
// reported.
func (d *Dialog) Notify(ctx context.Context, title, message string) error {
	err := d.Run(ctx, "osascript", "-e", DialogScript(title, message))
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return &reminder.NotificationRenderError{Platform: "darwin", Err: err}
}
