package scheduler

import (
	"testing"
	"time"
)

func TestHeapPushPopOrdering(t *testing.T) {
	h := &scheduleHeap{}
	base := time.Now()

	heapPush(h, ScheduleEvent{ReminderID: "late", TriggerAt: base.Add(3 * time.Hour)})
	heapPush(h, ScheduleEvent{ReminderID: "early", TriggerAt: base.Add(1 * time.Hour)})
	heapPush(h, ScheduleEvent{ReminderID: "mid", TriggerAt: base.Add(2 * time.Hour)})

	for _, want := range []string{"early", "mid", "late"} {
		if got := heapPop(h).ReminderID; got != want {
			t.Errorf("pop = %s; want %s", got, want)
		}
	}
}

func TestHeapEmpty(t *testing.T) {
	h := &scheduleHeap{}
	if h.Len() != 0 {
		t.Errorf("expected empty heap, got len %d", h.Len())
	}
}

func TestHeapDuplicateTriggerTimes(t *testing.T) {
	h := &scheduleHeap{}
	same := time.Now().Add(time.Hour)
	for _, id := range []string{"a", "b", "c"} {
		heapPush(h, ScheduleEvent{ReminderID: id, TriggerAt: same})
	}
	seen := map[string]bool{}
	for h.Len() > 0 {
		e := heapPop(h)
		if seen[e.ReminderID] {
			t.Errorf("duplicate pop for %s", e.ReminderID)
		}
		seen[e.ReminderID] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct reminders, got %d", len(seen))
	}
}

func TestHeapPushReplacesSameID(t *testing.T) {
	h := &scheduleHeap{}
	base := time.Now()
	heapPush(h, ScheduleEvent{ReminderID: "a", TriggerAt: base.Add(time.Hour)})
	heapPush(h, ScheduleEvent{ReminderID: "a", TriggerAt: base.Add(time.Minute)})
	if h.Len() != 1 {
		t.Fatalf("len = %d; want 1", h.Len())
	}
	if got := heapPop(h).TriggerAt; !got.Equal(base.Add(time.Minute)) {
		t.Errorf("TriggerAt = %v; want the later push", got)
	}
}

func TestHeapRemoveByID(t *testing.T) {
	h := &scheduleHeap{}
	base := time.Now()
	heapPush(h, ScheduleEvent{ReminderID: "a", TriggerAt: base.Add(1 * time.Hour)})
	heapPush(h, ScheduleEvent{ReminderID: "b", TriggerAt: base.Add(2 * time.Hour)})
	heapPush(h, ScheduleEvent{ReminderID: "c", TriggerAt: base.Add(3 * time.Hour)})

	if !heapRemoveByID(h, "b") {
		t.Error("expected removal to succeed")
	}
	if heapRemoveByID(h, "nonexistent") {
		t.Error("expected removal to fail for unknown id")
	}
	if first := heapPop(h); first.ReminderID != "a" {
		t.Errorf("expected a, got %s", first.ReminderID)
	}
	if second := heapPop(h); second.ReminderID != "c" {
		t.Errorf("expected c, got %s", second.ReminderID)
	}
}

func TestHeapReset(t *testing.T) {
	h := &scheduleHeap{}
	base := time.Now()
	heapPush(h, ScheduleEvent{ReminderID: "old", TriggerAt: base})

	heapReset(h, []ScheduleEvent{
		{ReminderID: "x", TriggerAt: base.Add(2 * time.Hour)},
		{ReminderID: "y", TriggerAt: base.Add(1 * time.Hour)},
		{ReminderID: "x", TriggerAt: base.Add(3 * time.Hour)},
	})
	if h.Len() != 2 {
		t.Fatalf("len = %d; want 2", h.Len())
	}
	if e := heapPop(h); e.ReminderID != "y" {
		t.Errorf("first = %s; want y", e.ReminderID)
	}
	if e := heapPop(h); e.ReminderID != "x" || !e.TriggerAt.Equal(base.Add(3*time.Hour)) {
		t.Errorf("second = %+v; want x at +3h", e)
	}
}
