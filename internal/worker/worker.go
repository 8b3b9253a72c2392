// Package worker implements the Delivery Worker: wait out a delay, render
// the notification, then retire the reminder from the store.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/warpdl/reminder/internal/notify"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/pkg/logger"
)

// Job carries everything a worker needs. It is passed on the command line
// to detached worker processes, so it holds locations rather than handles.
type Job struct {
	StorePath string
	Backend   string
	ID        string
	Title     string
	Message   string
	Delay     time.Duration
	LogPath   string
}

// JobFor builds the job for r, armed relative to now. Past triggers get a
// zero delay.
func JobFor(r reminder.Reminder, storePath, backend, logPath string, now time.Time) Job {
	return Job{
		StorePath: storePath,
		Backend:   backend,
		ID:        r.ID,
		Title:     r.Title,
		Message:   r.Message,
		Delay:     r.TimeLeft(now),
		LogPath:   logPath,
	}
}

// State is a worker lifecycle state.
type State int

const (
	Armed State = iota
	Firing
	Retiring
	Done
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Firing:
		return "firing"
	case Retiring:
		return "retiring"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Worker delivers reminders.
type Worker struct {
	Store    store.Store
	Notifier notify.Notifier
	Log      logger.Logger
	// VerifyBeforeFire skips rendering when the reminder is no longer in
	// the store, so a reminder cancelled while armed stays silent.
	VerifyBeforeFire bool
	// OnState, if set, observes every state transition.
	OnState func(id string, s State)
}

func (w *Worker) enter(id string, s State) {
	if w.OnState != nil {
		w.OnState(id, s)
	}
}

func (w *Worker) log() logger.Logger {
	if w.Log == nil {
		return logger.NewNopLogger()
	}
	return w.Log
}

// Run sleeps for job.Delay and then fires. Cancelling ctx while armed
// aborts without firing.
func (w *Worker) Run(ctx context.Context, job Job) error {
	w.enter(job.ID, Armed)
	w.log().Info("Worker armed: %s fires in %s", job.ID, job.Delay)
	if job.Delay > 0 {
		timer := time.NewTimer(job.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			w.log().Warning("Worker for %s stopped before firing: %v", job.ID, ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}
	}
	return w.Fire(ctx, job)
}

// Fire renders the notification and retires the reminder. Render failures
// are logged and never prevent retirement.
func (w *Worker) Fire(ctx context.Context, job Job) error {
	w.enter(job.ID, Firing)
	if w.shouldRender(job.ID) {
		w.log().Info("Showing notification for %s: %q", job.ID, job.Title)
		if err := w.Notifier.Notify(ctx, job.Title, job.Message); err != nil {
			w.log().Error("Failed to show notification for %s: %v", job.ID, err)
		}
	}

	w.enter(job.ID, Retiring)
	found, err := store.Remove(w.Store, job.ID)
	if err != nil {
		w.log().Error("Failed to retire reminder %s: %v", job.ID, err)
		w.enter(job.ID, Done)
		return fmt.Errorf("retire reminder %s: %w", job.ID, err)
	}
	if found {
		w.log().Info("Reminder %s delivered and removed", job.ID)
	}
	w.enter(job.ID, Done)
	return nil
}

func (w *Worker) shouldRender(id string) bool {
	if !w.VerifyBeforeFire {
		return true
	}
	rs, err := w.Store.Load()
	if err != nil {
		// Unreadable store: deliver rather than drop.
		w.log().Warning("Could not verify reminder %s before firing: %v", id, err)
		return true
	}
	if _, ok := reminder.Find(rs, id); !ok {
		w.log().Info("Reminder %s was cancelled, skipping notification", id)
		return false
	}
	return true
}
