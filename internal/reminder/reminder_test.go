package reminder

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"testing"
	"time"
)

var idPattern = regexp.MustCompile(`^reminder_\d+_[0-9a-f]{9}$`)

func TestNewID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewID(now)
	if !idPattern.MatchString(id) {
		t.Fatalf("NewID() = %q; want reminder_<ms>_<9 chars>", id)
	}
	if !strings.HasPrefix(id, "reminder_1700000000123_") {
		t.Errorf("NewID() = %q; want timestamp 1700000000123", id)
	}
}

func TestNewID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(now)
		if seen[id] {
			t.Fatalf("duplicate id after %d iterations: %s", i, id)
		}
		seen[id] = true
	}
}

func TestNew(t *testing.T) {
	now := time.UnixMilli(1000)
	trigger := now.Add(time.Minute)
	r := New("title", "msg", trigger, now)
	if r.TriggerTime != 61000 {
		t.Errorf("TriggerTime = %d; want 61000", r.TriggerTime)
	}
	if r.Created != 1000 {
		t.Errorf("Created = %d; want 1000", r.Created)
	}
	if r.Title != "title" || r.Message != "msg" {
		t.Errorf("unexpected text fields: %+v", r)
	}
}

func TestExpired(t *testing.T) {
	now := time.UnixMilli(5000)
	tests := []struct {
		trigger int64
		want    bool
	}{
		{4999, true},
		{5000, true},
		{5001, false},
	}
	for _, tt := range tests {
		r := Reminder{TriggerTime: tt.trigger}
		if got := r.Expired(now); got != tt.want {
			t.Errorf("Expired(trigger=%d) = %v; want %v", tt.trigger, got, tt.want)
		}
	}
}

func TestTimeLeft(t *testing.T) {
	now := time.UnixMilli(0)
	r := Reminder{TriggerTime: 600000}
	if got := r.TimeLeft(now); got != 10*time.Minute {
		t.Errorf("TimeLeft = %v; want 10m", got)
	}
	past := Reminder{TriggerTime: -1}
	if got := past.TimeLeft(now); got != 0 {
		t.Errorf("TimeLeft for expired = %v; want 0", got)
	}

	// 300 years does not fit in a time.Duration.
	far := Reminder{TriggerTime: 300 * 365 * 24 * 3_600_000}
	if got := far.MillisLeft(now); got != far.TriggerTime {
		t.Errorf("MillisLeft = %d; want %d", got, far.TriggerTime)
	}
	if got := far.TimeLeft(now); got != time.Duration(math.MaxInt64) {
		t.Errorf("TimeLeft = %v; want saturated", got)
	}
}

func TestActiveAndWithout(t *testing.T) {
	now := time.UnixMilli(100)
	rs := []Reminder{
		{ID: "a", TriggerTime: 50},
		{ID: "b", TriggerTime: 150},
		{ID: "c", TriggerTime: 200},
	}
	active := Active(rs, now)
	if len(active) != 2 || active[0].ID != "b" || active[1].ID != "c" {
		t.Fatalf("Active = %+v; want [b c]", active)
	}

	rest, found := Without(active, "b")
	if !found {
		t.Fatal("expected b to be found")
	}
	if len(rest) != 1 || rest[0].ID != "c" {
		t.Fatalf("Without(b) = %+v; want [c]", rest)
	}

	rest, found = Without(active, "zzz")
	if found {
		t.Fatal("expected zzz to be absent")
	}
	if len(rest) != 2 {
		t.Fatalf("Without(zzz) changed the set: %+v", rest)
	}

	if _, ok := Find(rs, "c"); !ok {
		t.Error("Find(c) should succeed")
	}
	if _, ok := Find(rs, "nope"); ok {
		t.Error("Find(nope) should fail")
	}
}

func TestErrors(t *testing.T) {
	ite := &InvalidTimeFormatError{Input: "tomorrowish"}
	if !strings.Contains(ite.Error(), `"tomorrowish"`) {
		t.Errorf("InvalidTimeFormatError should quote input, got %q", ite.Error())
	}
	if !strings.Contains(ite.Error(), "in 30 minutes") {
		t.Errorf("InvalidTimeFormatError should list accepted formats, got %q", ite.Error())
	}

	cause := errors.New("unexpected EOF")
	cse := &CorruptStoreError{Path: "/tmp/r.json", Err: cause}
	if !errors.Is(cse, cause) {
		t.Error("CorruptStoreError should unwrap to its cause")
	}

	wrapped := fmt.Errorf("save: %w", ErrIO)
	if !errors.Is(wrapped, ErrIO) {
		t.Error("wrapped ErrIO should match")
	}

	nre := &NotificationRenderError{Platform: "linux", Err: cause}
	var target *NotificationRenderError
	if !errors.As(fmt.Errorf("fire: %w", nre), &target) {
		t.Error("errors.As should find NotificationRenderError")
	}

	rre := &RemoteRejectedError{}
	if rre.Error() == "" {
		t.Error("RemoteRejectedError should have a message")
	}
}
