package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

// Local runs every operation against the store and arms a Delivery
// Worker for each created reminder.
type Local struct {
	Store   store.Store
	Spawner worker.Spawner
	Log     logger.Logger
	// Backend and LogPath are passed on to spawned workers.
	Backend string
	LogPath string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (l *Local) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Local) log() logger.Logger {
	if l.Log == nil {
		return logger.NewNopLogger()
	}
	return l.Log
}

func (l *Local) Create(_ context.Context, req CreateRequest) (*Receipt, error) {
	now := l.now()
	if err := validate(req, now); err != nil {
		return nil, err
	}

	var r reminder.Reminder
	err := l.Store.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		active := reminder.Active(rs, now)
		r = reminder.New(req.Title, req.Message, req.Trigger, now)
		for {
			if _, taken := reminder.Find(active, r.ID); !taken {
				break
			}
			r.ID = reminder.NewID(now)
		}
		return append(active, r), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}
	l.log().Info("Reminder %s created locally for %s", r.ID, r.Trigger().Format(time.RFC3339))

	job := worker.JobFor(r, l.Store.Path(), l.Backend, l.LogPath, now)
	if err := l.Spawner.Spawn(job); err != nil {
		// The record is persisted; the next startup reconcile re-arms it.
		l.log().Error("Failed to start delivery worker for %s: %v", r.ID, err)
	}

	return &Receipt{
		ID:          r.ID,
		Title:       r.Title,
		Message:     r.Message,
		TriggerTime: r.Trigger(),
	}, nil
}

// List drops expired records, persisting the pruned set when anything was
// dropped.
func (l *Local) List(_ context.Context) (*Listing, error) {
	now := l.now()
	var active []reminder.Reminder
	err := l.Store.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		active = reminder.Active(rs, now)
		if len(active) == len(rs) {
			return nil, store.ErrNoChange
		}
		return active, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}

	listing := &Listing{Entries: make([]Entry, 0, len(active))}
	for _, r := range active {
		listing.Entries = append(listing.Entries, Entry{
			ID:          r.ID,
			Title:       r.Title,
			Message:     r.Message,
			TriggerTime: r.Trigger(),
			TimeLeft:    r.MillisLeft(now),
		})
	}
	return listing, nil
}

// Cancel removes id. A worker already armed for it is not interrupted.
func (l *Local) Cancel(_ context.Context, id string) (*Outcome, error) {
	now := l.now()
	found := false
	err := l.Store.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		active := reminder.Active(rs, now)
		var out []reminder.Reminder
		out, found = reminder.Without(active, id)
		if !found && len(active) == len(rs) {
			return nil, store.ErrNoChange
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reminder: %w", err)
	}
	if found {
		l.log().Info("Reminder %s cancelled locally", id)
	}
	return &Outcome{ID: id, Found: found}, nil
}

var _ Service = (*Local)(nil)
