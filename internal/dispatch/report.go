package dispatch

import (
	"fmt"
	"strings"
	"time"
)

// LocalTimeLayout formats trigger times in reports.
const LocalTimeLayout = "2006-01-02 15:04:05"

func formatLocal(t time.Time) string {
	return t.Local().Format(LocalTimeLayout)
}

const (
	msPerMinute = int64(time.Minute / time.Millisecond)
	msPerHour   = int64(time.Hour / time.Millisecond)
)

// FormatTimeLeft renders ms as "<h>h <m>m", truncating seconds.
func FormatTimeLeft(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%dh %dm", ms/msPerHour, ms%msPerHour/msPerMinute)
}

// CreateReport is the confirmation shown after a successful create.
func CreateReport(r *Receipt) string {
	var b strings.Builder
	b.WriteString("✅ Reminder created successfully!\n\n")
	if !r.Remote {
		fmt.Fprintf(&b, "ID: %s\n", r.ID)
	}
	fmt.Fprintf(&b, "Title: %s\nMessage: %s\nScheduled for: %s\n\n", r.Title, r.Message, formatLocal(r.TriggerTime))
	if r.Remote {
		b.WriteString("The remote coordinator will deliver the notification at the scheduled time.")
	} else {
		b.WriteString("A system notification will appear at the scheduled time.")
	}
	return b.String()
}

// ListReport renders the active reminders.
func ListReport(l *Listing) string {
	if l == nil || len(l.Entries) == 0 {
		return "No active reminders."
	}
	items := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		items = append(items, fmt.Sprintf("• %s\n  ID: %s\n  Message: %s\n  Time: %s\n  Time left: %s",
			e.Title, e.ID, e.Message, formatLocal(e.TriggerTime), FormatTimeLeft(e.TimeLeft)))
	}
	return fmt.Sprintf("Active Reminders (%d):\n\n%s", len(l.Entries), strings.Join(items, "\n\n"))
}

// CancelReport renders a cancel outcome.
func CancelReport(o *Outcome) string {
	if !o.Found {
		return fmt.Sprintf("Error: Reminder with ID \"%s\" not found.", o.ID)
	}
	return fmt.Sprintf("✅ Reminder \"%s\" cancelled successfully.", o.ID)
}

// ErrorReport renders any failure, including invalid time expressions.
func ErrorReport(err error) string {
	return "Error: " + err.Error()
}
