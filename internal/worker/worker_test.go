package worker

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/reminder/internal/notify"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"github.com/warpdl/reminder/pkg/logger"
)

type fakeNotifier struct {
	mu    sync.Mutex
	shown []string
	at    []time.Time
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, title+"|"+message)
	f.at = append(f.at, time.Now())
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

func newStore(t *testing.T, rs ...reminder.Reminder) store.Store {
	t.Helper()
	s := store.NewJSONStore(afero.NewMemMapFs(), "/data/reminders.json", nil)
	if err := s.Save(rs); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFire_RendersAndRetires(t *testing.T) {
	r := reminder.Reminder{ID: "r1", Title: "Tea", Message: "Kettle", TriggerTime: 1}
	other := reminder.Reminder{ID: "r2", Title: "x", Message: "y", TriggerTime: 2}
	s := newStore(t, r, other)
	n := &fakeNotifier{}
	var states []State
	w := &Worker{Store: s, Notifier: n, OnState: func(_ string, st State) { states = append(states, st) }}

	if err := w.Fire(context.Background(), Job{ID: "r1", Title: "Tea", Message: "Kettle"}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if n.count() != 1 || n.shown[0] != "Tea|Kettle" {
		t.Fatalf("shown = %v", n.shown)
	}
	rs, _ := s.Load()
	if len(rs) != 1 || rs[0].ID != "r2" {
		t.Fatalf("store after fire = %+v", rs)
	}
	want := []State{Firing, Retiring, Done}
	if len(states) != len(want) {
		t.Fatalf("states = %v", states)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d = %v; want %v", i, states[i], want[i])
		}
	}
}

func TestFire_RenderErrorStillRetires(t *testing.T) {
	s := newStore(t, reminder.Reminder{ID: "r1", Title: "a", TriggerTime: 1})
	log := logger.NewMockLogger()
	w := &Worker{Store: s, Notifier: &fakeNotifier{err: errors.New("no display")}, Log: log}

	if err := w.Fire(context.Background(), Job{ID: "r1", Title: "a"}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	rs, _ := s.Load()
	if len(rs) != 0 {
		t.Fatalf("reminder not retired: %+v", rs)
	}
	if len(log.Errors()) == 0 {
		t.Error("render failure should be logged")
	}
}

func TestFire_MissingRecordIsNoop(t *testing.T) {
	s := newStore(t, reminder.Reminder{ID: "keep", Title: "k", TriggerTime: 1})
	n := &fakeNotifier{}
	w := &Worker{Store: s, Notifier: n}
	if err := w.Fire(context.Background(), Job{ID: "gone", Title: "g"}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	// Without verification the cancelled reminder is still shown.
	if n.count() != 1 {
		t.Errorf("notifications = %d; want 1", n.count())
	}
	rs, _ := s.Load()
	if len(rs) != 1 {
		t.Errorf("unrelated record touched: %+v", rs)
	}
}

func TestFire_VerifyBeforeFireSkipsCancelled(t *testing.T) {
	s := newStore(t)
	n := &fakeNotifier{}
	w := &Worker{Store: s, Notifier: n, VerifyBeforeFire: true}
	if err := w.Fire(context.Background(), Job{ID: "gone", Title: "g"}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if n.count() != 0 {
		t.Errorf("cancelled reminder was shown")
	}
}

func TestRun_ContextCancelWhileArmed(t *testing.T) {
	s := newStore(t, reminder.Reminder{ID: "r1", Title: "a", TriggerTime: 1})
	n := &fakeNotifier{}
	w := &Worker{Store: s, Notifier: n}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Run(ctx, Job{ID: "r1", Delay: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v; want context.Canceled", err)
	}
	if n.count() != 0 {
		t.Error("aborted worker must not fire")
	}
	rs, _ := s.Load()
	if len(rs) != 1 {
		t.Error("aborted worker must not retire")
	}
}

func TestInlineSpawner_FiresAfterDelay(t *testing.T) {
	now := time.Now()
	r := reminder.New("Stretch", "Stand up", now.Add(2*time.Second), now)
	s := newStore(t, r)
	n := &fakeNotifier{}
	sp := NewInlineSpawner(context.Background(), &Worker{Store: s, Notifier: n})

	start := time.Now()
	if err := sp.Spawn(JobFor(r, s.Path(), "json", "", now)); err != nil {
		t.Fatal(err)
	}
	sp.Wait()

	if n.count() != 1 {
		t.Fatalf("notifications = %d; want 1", n.count())
	}
	elapsed := n.at[0].Sub(start)
	if elapsed < 1900*time.Millisecond || elapsed > 2500*time.Millisecond {
		t.Errorf("fired after %v; want about 2s", elapsed)
	}
	rs, _ := s.Load()
	if _, ok := reminder.Find(rs, r.ID); ok {
		t.Error("record still present after delivery")
	}
}

func TestJobFor_ClampsPastTrigger(t *testing.T) {
	now := time.UnixMilli(10_000)
	j := JobFor(reminder.Reminder{ID: "x", TriggerTime: 5_000}, "/s", "json", "/l", now)
	if j.Delay != 0 {
		t.Errorf("Delay = %v; want 0", j.Delay)
	}
	j = JobFor(reminder.Reminder{ID: "x", TriggerTime: 610_000}, "/s", "json", "/l", now)
	if j.Delay != 600*time.Second {
		t.Errorf("Delay = %v; want 10m", j.Delay)
	}
}

func TestJob_Args(t *testing.T) {
	j := Job{StorePath: "/s.json", Backend: "json", ID: "id1", Title: "-dash", Message: "m", Delay: 1500 * time.Millisecond, LogPath: "/l"}
	got := j.Args()
	want := []string{"worker", "--store", "/s.json", "--backend", "json", "--id", "id1",
		"--title", "-dash", "--message", "m", "--delay", "1500", "--log", "/l"}
	if len(got) != len(want) {
		t.Fatalf("Args = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg %d = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestProcessSpawner_StartsDetached(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a unix helper binary")
	}
	exe, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}
	sp := &ProcessSpawner{Executable: exe, Log: logger.NewNopLogger()}
	if err := sp.Spawn(Job{ID: "x"}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
}

func TestProcessSpawner_MissingExecutable(t *testing.T) {
	sp := &ProcessSpawner{Executable: "/nonexistent/reminder-binary"}
	if err := sp.Spawn(Job{ID: "x"}); err == nil {
		t.Fatal("expected error for missing executable")
	}
}

var _ notify.Notifier = (*fakeNotifier)(nil)
