package scheduler

import "container/heap"

// scheduleHeap implements container/heap.Interface for ScheduleEvent,
// earliest TriggerAt first.
type scheduleHeap []ScheduleEvent

func (h scheduleHeap) Len() int           { return len(h) }
func (h scheduleHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h scheduleHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scheduleHeap) Push(x any) {
	*h = append(*h, x.(ScheduleEvent))
}

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds e, replacing any queued event for the same reminder.
func heapPush(h *scheduleHeap, e ScheduleEvent) {
	heapRemoveByID(h, e.ReminderID)
	heap.Push(h, e)
}

// heapPop removes and returns the earliest event. Panics if h is empty.
func heapPop(h *scheduleHeap) ScheduleEvent {
	return heap.Pop(h).(ScheduleEvent)
}

// heapRemoveByID removes the event for id and reports whether it was queued.
func heapRemoveByID(h *scheduleHeap, id string) bool {
	for i, e := range *h {
		if e.ReminderID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}

// heapReset replaces the contents of h with events, deduplicated by id
// (last one wins).
func heapReset(h *scheduleHeap, events []ScheduleEvent) {
	idx := make(map[string]int, len(events))
	fresh := make(scheduleHeap, 0, len(events))
	for _, e := range events {
		if i, ok := idx[e.ReminderID]; ok {
			fresh[i] = e
			continue
		}
		idx[e.ReminderID] = len(fresh)
		fresh = append(fresh, e)
	}
	*h = fresh
	heap.Init(h)
}
