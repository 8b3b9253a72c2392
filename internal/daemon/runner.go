// Package daemon provides the delivery daemon: a long-lived process that
// drains the reminder store instead of one detached worker per reminder.
// It keeps a scheduler heap in sync with the store, delivers each reminder
// at its trigger time and retires it.
package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/warpdl/reminder/internal/notify"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/scheduler"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running
	// daemon, or when the pidfile names another live process.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrNotRunning is returned by Stop when no live daemon is recorded.
	ErrNotRunning = errors.New("daemon is not running")

	// ErrShutdownTimeout is returned when in-flight deliveries outlast the
	// configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

const (
	DefaultResyncInterval = 30 * time.Second
	DefaultDebounce       = 200 * time.Millisecond
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// PidPath is the pidfile location.
	PidPath string

	// Backend and LogPath are copied into delivery jobs for logging.
	Backend string
	LogPath string

	// ResyncInterval is how often the store is re-read without any
	// filesystem event.
	ResyncInterval time.Duration

	// Debounce batches bursts of store writes into one resync.
	Debounce time.Duration

	// ShutdownTimeout bounds the wait for in-flight deliveries.
	// A zero value waits indefinitely.
	ShutdownTimeout time.Duration
}

// Dependencies holds the external dependencies for the daemon runner.
type Dependencies struct {
	// Store is required.
	Store store.Store

	// Notifier renders deliveries. If nil, the platform default is used.
	Notifier notify.Notifier

	// Log defaults to a NopLogger.
	Log logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Runner manages the daemon lifecycle.
type Runner struct {
	config *Config
	deps   *Dependencies
	worker *worker.Worker

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	ctx     context.Context
	// pending holds the active reminders from the last resync, by id.
	pending  map[string]reminder.Reminder
	inflight map[string]bool
	// scheduled mirrors the events queued in the scheduler heap.
	scheduled map[string]time.Time

	deliveries sync.WaitGroup
	ready      chan struct{}
	readyOnce  sync.Once
}

// New creates a new daemon runner.
func New(config *Config, deps *Dependencies) *Runner {
	cfg := applyConfigDefaults(config)
	d := applyDependencyDefaults(deps)
	return &Runner{
		config: cfg,
		deps:   d,
		worker: &worker.Worker{
			Store:            d.Store,
			Notifier:         d.Notifier,
			Log:              d.Log,
			VerifyBeforeFire: true,
		},
		pending:   make(map[string]reminder.Reminder),
		inflight:  make(map[string]bool),
		scheduled: make(map[string]time.Time),
		ready:     make(chan struct{}),
	}
}

func applyConfigDefaults(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}
	c := *config
	if c.ResyncInterval <= 0 {
		c.ResyncInterval = DefaultResyncInterval
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	return &c
}

func applyDependencyDefaults(deps *Dependencies) *Dependencies {
	if deps == nil {
		deps = &Dependencies{}
	}
	d := *deps
	if d.Notifier == nil {
		d.Notifier = notify.Default()
	}
	if d.Log == nil {
		d.Log = logger.NewNopLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &d
}

// Ready is closed once the first store sync has completed.
func (r *Runner) Ready() <-chan struct{} {
	return r.ready
}

// Start runs the daemon and blocks until ctx is cancelled. It claims the pidfile, drops expired reminders, arms the rest and
// then follows the store.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	if r.config.PidPath != "" {
		if err := AcquirePidFile(r.config.PidPath); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.ctx = ctx
	r.running = true
	r.mu.Unlock()

	log := r.deps.Log
	defer r.cleanupOnStop()

	pruned, err := r.pruneExpired()
	if err != nil {
		log.Error("Daemon: startup cleanup failed: %v", err)
	} else if pruned > 0 {
		log.Info("Daemon: discarded %d expired reminder(s)", pruned)
	}

	sched := scheduler.New(ctx, r.onTrigger)
	r.resync(sched, true)
	r.readyOnce.Do(func() { close(r.ready) })
	log.Info("Daemon: started with %d reminder(s) queued, watching %s", sched.Len(), r.deps.Store.Path())

	watcher := r.watch()
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher != nil {
		events = watcher.Events
		watchErrs = watcher.Errors
		defer watcher.Close()
	}

	debounce := time.NewTicker(r.config.Debounce)
	defer debounce.Stop()
	resync := time.NewTicker(r.config.ResyncInterval)
	defer resync.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			<-sched.Done()
			log.Info("Daemon: stopping")
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if r.isStoreEvent(ev) {
				dirty = true
			}

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			log.Warning("Daemon: watch error: %v", err)

		case <-debounce.C:
			if dirty {
				dirty = false
				r.resync(sched, false)
			}

		case <-resync.C:
			dirty = false
			r.resync(sched, true)
		}
	}
}

// watch starts an fsnotify watch on the store directory. Failure is not
// fatal; the periodic resync still picks up changes.
func (r *Runner) watch() *fsnotify.Watcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		r.deps.Log.Warning("Daemon: file watching unavailable: %v", err)
		return nil
	}
	dir := filepath.Dir(r.deps.Store.Path())
	if err := w.Add(dir); err != nil {
		r.deps.Log.Warning("Daemon: cannot watch %s: %v", dir, err)
		w.Close()
		return nil
	}
	return w
}

// isStoreEvent matches writes to the store and its sidecar files (the
// JSON temp file, SQLite WAL), but not the lock file.
func (r *Runner) isStoreEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	storeBase := filepath.Base(r.deps.Store.Path())
	return strings.HasPrefix(base, storeBase) && !strings.HasSuffix(base, ".lock")
}

// pruneExpired removes reminders whose trigger time has passed while no
// daemon was running. They are not delivered late.
func (r *Runner) pruneExpired() (int, error) {
	now := r.deps.Now()
	pruned := 0
	err := r.deps.Store.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		active := reminder.Active(rs, now)
		if len(active) == len(rs) {
			return nil, store.ErrNoChange
		}
		pruned = len(rs) - len(active)
		return active, nil
	})
	return pruned, err
}

// resync brings the heap in line with the store's active set. A full
// resync rebuilds the heap; otherwise only new, moved and removed
// reminders are queued or dropped. Reminders that expired while the daemon
// was running and are not being delivered yet were missed between syncs,
// so they are delivered now.
func (r *Runner) resync(sched *scheduler.Scheduler, full bool) {
	rs, err := r.deps.Store.Load()
	if err != nil {
		r.deps.Log.Warning("Daemon: resync failed: %v", err)
		return
	}
	expired, future := scheduler.LoadSchedules(rs, r.deps.Now())

	r.mu.Lock()
	r.pending = make(map[string]reminder.Reminder, len(rs))
	for _, rem := range rs {
		r.pending[rem.ID] = rem
	}
	for _, rem := range expired {
		r.deliverLocked(rem)
	}
	events := future[:0:0]
	var removed []string
	queued := make(map[string]time.Time, len(future))
	for _, ev := range future {
		if r.inflight[ev.ReminderID] {
			continue
		}
		queued[ev.ReminderID] = ev.TriggerAt
		if at, ok := r.scheduled[ev.ReminderID]; full || !ok || !at.Equal(ev.TriggerAt) {
			events = append(events, ev)
		}
	}
	for id := range r.scheduled {
		if _, ok := queued[id]; !ok {
			removed = append(removed, id)
		}
	}
	r.scheduled = queued
	r.mu.Unlock()

	if full {
		sched.Replace(events)
		return
	}
	for _, id := range removed {
		sched.Remove(id)
	}
	for _, ev := range events {
		sched.Add(ev)
	}
}

// onTrigger runs on the scheduler goroutine.
func (r *Runner) onTrigger(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scheduled, id)
	rem, ok := r.pending[id]
	if !ok {
		return
	}
	r.deliverLocked(rem)
}

// deliverLocked fires rem on its own goroutine. Caller must hold r.mu.
func (r *Runner) deliverLocked(rem reminder.Reminder) {
	if r.inflight[rem.ID] || r.ctx == nil {
		return
	}
	r.inflight[rem.ID] = true
	ctx := r.ctx
	job := worker.JobFor(rem, r.deps.Store.Path(), r.config.Backend, r.config.LogPath, r.deps.Now())
	job.Delay = 0

	r.deliveries.Add(1)
	go func() {
		defer r.deliveries.Done()
		if err := r.worker.Fire(ctx, job); err != nil {
			r.deps.Log.Error("Daemon: delivery of %s failed: %v", rem.ID, err)
		}
		r.mu.Lock()
		delete(r.inflight, rem.ID)
		delete(r.pending, rem.ID)
		r.mu.Unlock()
	}()
}

// cleanupOnStop waits for in-flight deliveries and releases the pidfile.
func (r *Runner) cleanupOnStop() {
	if err := r.waitDeliveries(); err != nil {
		r.deps.Log.Warning("Daemon: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	if r.cancel != nil {
		r.cancel()
	}
	if r.config.PidPath != "" {
		if err := RemovePidFile(r.config.PidPath); err != nil {
			r.deps.Log.Warning("Daemon: failed to remove pidfile: %v", err)
		}
	}
}

func (r *Runner) waitDeliveries() error {
	if r.config.ShutdownTimeout <= 0 {
		r.deliveries.Wait()
		return nil
	}
	done := make(chan struct{})
	go func() {
		r.deliveries.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(r.config.ShutdownTimeout):
		return ErrShutdownTimeout
	}
}

