// Package dispatch implements the reminder operations behind the front
// door: create, list and cancel, tried first against the remote
// coordinator and then against the local store.
package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/warpdl/reminder/internal/config"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

// CreateRequest describes a reminder to schedule. Trigger is already
// resolved from the user's time expression.
type CreateRequest struct {
	Title   string
	Message string
	Trigger time.Time
}

// Receipt confirms a created reminder.
type Receipt struct {
	// ID is empty when the remote peer did not report one.
	ID          string
	Title       string
	Message     string
	TriggerTime time.Time
	// Remote is set when the remote peer took the reminder, in which case
	// no local worker was spawned.
	Remote bool
}

// Entry is a pending reminder as listed.
type Entry struct {
	ID          string
	Title       string
	Message     string
	TriggerTime time.Time
	// TimeLeft is in milliseconds.
	TimeLeft int64
}

// Listing is the set of active reminders.
type Listing struct {
	Entries []Entry
	Remote  bool
}

// Outcome reports a cancel. An unknown id is not an error.
type Outcome struct {
	ID    string
	Found bool
}

// validate applies the create rules shared by every dispatcher, before the
// request reaches the remote peer or the store.
func validate(req CreateRequest, now time.Time) error {
	if strings.TrimSpace(req.Title) == "" {
		return reminder.ErrEmptyTitle
	}
	if req.Trigger.UnixMilli() < now.UnixMilli() {
		return reminder.ErrTriggerInPast
	}
	return nil
}

// Service is implemented by Local, Remote and Fallback.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Receipt, error)
	List(ctx context.Context) (*Listing, error)
	Cancel(ctx context.Context, id string) (*Outcome, error)
}

// New builds the dispatcher for cfg: the remote peer backed by the local
// store, or the local store alone when the remote peer is disabled.
func New(cfg *config.Config, st store.Store, sp worker.Spawner, log logger.Logger) Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	local := &Local{
		Store:   st,
		Spawner: sp,
		Log:     log,
		Backend: cfg.Store.Backend,
		LogPath: jobLogPath(cfg),
	}
	if !cfg.Remote.Enabled {
		return local
	}
	return &Fallback{
		Primary:   NewRemote(cfg.RemoteBaseURL(), cfg.Remote.Timeout),
		Secondary: local,
		Log:       log,
	}
}

// jobLogPath is handed to detached workers; they only log to a file in
// debug mode.
func jobLogPath(cfg *config.Config) string {
	if !cfg.Log.Debug {
		return ""
	}
	return cfg.LogPath()
}
