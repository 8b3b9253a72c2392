package scheduler

import "time"

// ScheduleEvent is a pending reminder in the scheduler heap.
type ScheduleEvent struct {
	// ReminderID identifies the reminder to deliver when TriggerAt is reached.
	ReminderID string
	// TriggerAt is the wall-clock firing time.
	TriggerAt time.Time
}
