package dispatch

import (
	"fmt"
	"time"

	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/internal/worker"
	"github.com/warpdl/reminder/pkg/logger"
)

// ReconcileResult summarises a startup pass.
type ReconcileResult struct {
	// Expired lists the ids discarded without delivery.
	Expired []string
	// Armed lists the jobs handed to the spawner.
	Armed []worker.Job
}

// Reconcile re-arms the store after a restart: expired reminders are
// dropped (the store is only written when something expired) and a worker
// is spawned for every remaining one with its remaining delay.
//
// Workers that survived the restart are not detected, so a reminder can
// end up armed twice; the second delivery finds nothing to retire.
func Reconcile(st store.Store, sp worker.Spawner, now time.Time, log logger.Logger) (*ReconcileResult, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	var active []reminder.Reminder
	res := &ReconcileResult{}
	err := st.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		active = make([]reminder.Reminder, 0, len(rs))
		res.Expired = res.Expired[:0]
		for _, r := range rs {
			if r.Expired(now) {
				res.Expired = append(res.Expired, r.ID)
			} else {
				active = append(active, r)
			}
		}
		if len(res.Expired) == 0 {
			return nil, store.ErrNoChange
		}
		return active, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile store: %w", err)
	}
	if len(res.Expired) > 0 {
		log.Info("Cleaned up %d expired reminder(s), %d active", len(res.Expired), len(active))
	}

	backend := store.Backend(st)
	for _, r := range active {
		job := worker.JobFor(r, st.Path(), backend, "", now)
		if err := sp.Spawn(job); err != nil {
			log.Error("Failed to re-arm reminder %s: %v", r.ID, err)
			continue
		}
		log.Info("Rescheduled reminder %s, fires in %s", r.ID, job.Delay)
		res.Armed = append(res.Armed, job)
	}
	return res, nil
}
