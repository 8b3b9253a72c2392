package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeNotifier struct {
	mu    sync.Mutex
	shown []string
	ch    chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan string, 16)}
}

func (f *fakeNotifier) Notify(_ context.Context, title, _ string) error {
	f.mu.Lock()
	f.shown = append(f.shown, title)
	f.mu.Unlock()
	f.ch <- title
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shown)
}

func (f *fakeNotifier) waitFor(t *testing.T, title string, within time.Duration) {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case got := <-f.ch:
			if got == title {
				return
			}
		case <-deadline:
			t.Fatalf("notification %q not shown within %v", title, within)
		}
	}
}

type harness struct {
	runner   *Runner
	store    store.Store
	notifier *fakeNotifier
	pidPath  string
	cancel   context.CancelFunc
	done     chan error
	stopOnce sync.Once
}

func startRunner(t *testing.T, seed ...reminder.Reminder) *harness {
	t.Helper()
	dir := t.TempDir()
	st := store.NewJSONStore(afero.NewOsFs(), filepath.Join(dir, "reminders.json"), nil)
	if len(seed) > 0 {
		if err := st.Save(seed); err != nil {
			t.Fatal(err)
		}
	}
	h := &harness{
		store:    st,
		notifier: newFakeNotifier(),
		pidPath:  filepath.Join(dir, "daemon.pid"),
		done:     make(chan error, 1),
	}
	h.runner = New(&Config{
		PidPath:        h.pidPath,
		Backend:        "json",
		ResyncInterval: time.Hour,
		Debounce:       20 * time.Millisecond,
	}, &Dependencies{Store: st, Notifier: h.notifier})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.runner.Start(ctx) }()

	select {
	case <-h.runner.Ready():
	case err := <-h.done:
		t.Fatalf("Start returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner not ready")
	}
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done
	})
}

func at(d time.Duration) int64 {
	return time.Now().Add(d).UnixMilli()
}

func TestNew_AppliesDefaults(t *testing.T) {
	r := New(nil, &Dependencies{Store: store.NewJSONStore(afero.NewMemMapFs(), "/r.json", nil)})
	if r.config.ResyncInterval != DefaultResyncInterval {
		t.Errorf("ResyncInterval = %v", r.config.ResyncInterval)
	}
	if r.config.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v", r.config.Debounce)
	}
}

func TestRunner_StartupPrunesExpiredAndDeliversFuture(t *testing.T) {
	h := startRunner(t,
		reminder.Reminder{ID: "old", Title: "old", TriggerTime: at(-10 * time.Minute)},
		reminder.Reminder{ID: "soon", Title: "soon", TriggerTime: at(300 * time.Millisecond)},
	)

	if pid, err := ReadPidFile(h.pidPath); err != nil || pid != os.Getpid() {
		t.Errorf("pidfile = %d, %v; want own pid", pid, err)
	}

	h.notifier.waitFor(t, "soon", 3*time.Second)
	h.stop()

	if h.notifier.count() != 1 {
		t.Errorf("notifications = %d; expired reminder must not be delivered", h.notifier.count())
	}
	rs, err := h.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 0 {
		t.Errorf("store after delivery = %+v", rs)
	}
	if _, err := os.Stat(h.pidPath); !os.IsNotExist(err) {
		t.Errorf("pidfile not removed on stop: %v", err)
	}
}

func TestRunner_PicksUpNewReminderFromStore(t *testing.T) {
	h := startRunner(t)

	// A separate store handle stands in for the dispatcher process.
	other := store.NewJSONStore(afero.NewOsFs(), h.store.Path(), nil)
	err := other.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		return append(rs, reminder.Reminder{ID: "new", Title: "new", TriggerTime: at(200 * time.Millisecond)}), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	h.notifier.waitFor(t, "new", 3*time.Second)
}

func TestRunner_CancelledReminderIsNotDelivered(t *testing.T) {
	h := startRunner(t,
		reminder.Reminder{ID: "a", Title: "a", TriggerTime: at(500 * time.Millisecond)},
		reminder.Reminder{ID: "b", Title: "b", TriggerTime: at(600 * time.Millisecond)},
	)

	if _, err := store.Remove(store.NewJSONStore(afero.NewOsFs(), h.store.Path(), nil), "a"); err != nil {
		t.Fatal(err)
	}

	h.notifier.waitFor(t, "b", 3*time.Second)
	h.stop()
	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	for _, title := range h.notifier.shown {
		if title == "a" {
			t.Fatal("cancelled reminder was delivered")
		}
	}
}

func TestRunner_SecondStartFails(t *testing.T) {
	h := startRunner(t)
	if err := h.runner.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start = %v; want ErrAlreadyRunning", err)
	}
}

func TestRunner_MovedReminderFiresAtNewTime(t *testing.T) {
	h := startRunner(t, reminder.Reminder{ID: "a", Title: "moved", TriggerTime: at(time.Hour)})

	other := store.NewJSONStore(afero.NewOsFs(), h.store.Path(), nil)
	err := other.Update(func(rs []reminder.Reminder) ([]reminder.Reminder, error) {
		rs[0].TriggerTime = at(200 * time.Millisecond)
		return rs, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	h.notifier.waitFor(t, "moved", 3*time.Second)
}

func TestRunner_RemovedReminderLeavesQueue(t *testing.T) {
	h := startRunner(t,
		reminder.Reminder{ID: "a", Title: "a", TriggerTime: at(time.Hour)},
		reminder.Reminder{ID: "b", Title: "b", TriggerTime: at(2 * time.Hour)},
	)
	if _, err := store.Remove(store.NewJSONStore(afero.NewOsFs(), h.store.Path(), nil), "a"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		h.runner.mu.Lock()
		_, queued := h.runner.scheduled["a"]
		n := len(h.runner.scheduled)
		h.runner.mu.Unlock()
		if !queued && n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("scheduled still holds a (%d queued)", n)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestAcquirePidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "daemon.pid")

	if err := AcquirePidFile(path); err != nil {
		t.Fatalf("AcquirePidFile: %v", err)
	}
	if pid, _ := ReadPidFile(path); pid != os.Getpid() {
		t.Errorf("pid = %d", pid)
	}
	// Our own pid is not a competing daemon.
	if err := AcquirePidFile(path); err != nil {
		t.Errorf("re-acquire by same process: %v", err)
	}

	// A live foreign process blocks acquisition.
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AcquirePidFile(path); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("AcquirePidFile with live owner = %v; want ErrAlreadyRunning", err)
	}

	// Garbage is treated as stale.
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AcquirePidFile(path); err != nil {
		t.Errorf("AcquirePidFile over stale file: %v", err)
	}
}

func TestReadPidFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not a number", "abc"},
		{"zero", "0"},
		{"negative", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadPidFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStatusAndStop_NoDaemon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	pid, running, err := Status(path)
	if err != nil || running || pid != 0 {
		t.Errorf("Status = %d, %v, %v", pid, running, err)
	}
	if _, err := Stop(path); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop = %v; want ErrNotRunning", err)
	}
}

func TestSpawner_AlreadyRunningIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := WritePidFile(path); err != nil {
		t.Fatal(err)
	}
	s := &Spawner{PidPath: path, Executable: "/nonexistent/reminder"}
	if err := s.EnsureRunning(); err != nil {
		t.Fatalf("EnsureRunning with live pidfile: %v", err)
	}
}

func TestSpawner_SpawnFailure(t *testing.T) {
	s := &Spawner{PidPath: filepath.Join(t.TempDir(), "daemon.pid"), Executable: "/nonexistent/reminder"}
	if err := s.EnsureRunning(); err == nil {
		t.Fatal("expected spawn error")
	}
}
