// Package reminder defines the Reminder record shared by the store, the
// dispatcher and the delivery worker, along with the error taxonomy used
// across the module.
package reminder

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDPrefix is prepended to every generated reminder id.
const IDPrefix = "reminder_"

// suffixLen is the number of random characters appended to an id.
const suffixLen = 9

// Reminder is a pending one-shot notification. Once delivered or cancelled
// it is removed from the store; there is no history.
type Reminder struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	// TriggerTime is the firing instant in milliseconds since the epoch.
	TriggerTime int64 `json:"triggerTime"`
	// Created is informational only.
	Created int64 `json:"created"`
}

// New builds a reminder with a fresh id, created at now.
func New(title, message string, trigger, now time.Time) Reminder {
	return Reminder{
		ID:          NewID(now),
		Title:       title,
		Message:     message,
		TriggerTime: trigger.UnixMilli(),
		Created:     now.UnixMilli(),
	}
}

// NewID returns an id of the form reminder_<unix-ms>_<suffix>, where the
// suffix is 9 lowercase alphanumerics taken from a random UUID.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
	return fmt.Sprintf("%s%d_%s", IDPrefix, now.UnixMilli(), suffix)
}

// Trigger returns the trigger time as a time.Time.
func (r Reminder) Trigger() time.Time {
	return time.UnixMilli(r.TriggerTime)
}

// Expired reports whether the reminder's trigger time is not after now.
func (r Reminder) Expired(now time.Time) bool {
	return r.TriggerTime <= now.UnixMilli()
}

// MillisLeft returns the milliseconds until the trigger time, zero for
// expired reminders.
func (r Reminder) MillisLeft(now time.Time) int64 {
	left := r.TriggerTime - now.UnixMilli()
	if left < 0 {
		return 0
	}
	return left
}

// TimeLeft is MillisLeft as a time.Duration.
func (r Reminder) TimeLeft(now time.Time) time.Duration {
	return Millis(r.MillisLeft(now))
}

// Millis converts ms to a time.Duration, saturating at the largest
// representable duration (about 292 years).
func Millis(ms int64) time.Duration {
	if ms > math.MaxInt64/int64(time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	if ms < math.MinInt64/int64(time.Millisecond) {
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// Active returns the reminders that have not yet expired, preserving order.
func Active(rs []Reminder, now time.Time) []Reminder {
	out := make([]Reminder, 0, len(rs))
	for _, r := range rs {
		if !r.Expired(now) {
			out = append(out, r)
		}
	}
	return out
}

// Without returns rs minus the reminder with the given id and whether it
// was present.
func Without(rs []Reminder, id string) ([]Reminder, bool) {
	out := make([]Reminder, 0, len(rs))
	found := false
	for _, r := range rs {
		if r.ID == id {
			found = true
			continue
		}
		out = append(out, r)
	}
	return out, found
}

// Find returns the reminder with the given id.
func Find(rs []Reminder, id string) (Reminder, bool) {
	for _, r := range rs {
		if r.ID == id {
			return r, true
		}
	}
	return Reminder{}, false
}
