package notify

import (
	"context"

	"github.com/warpdl/reminder/internal/reminder"
)

// Desktop uses notify-send from libnotify.
type Desktop struct {
	Run Runner
}

func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	// "--" keeps a title such as "-u low" from being read as an option.
	if err := d.Run(ctx, "notify-send", "--urgency=critical", "--", title, message); err != nil {
		return &reminder.NotificationRenderError{Platform: "linux", Err: err}
	}
	return nil
}
