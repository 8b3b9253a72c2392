package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/warpdl/reminder/internal/reminder"
)

const maxSleepCap = 60 * time.Second

// Scheduler fires reminder events at their trigger time. All heap access
// happens on one goroutine; the exported methods talk to it over channels.
type Scheduler struct {
	addChan     chan ScheduleEvent
	removeChan  chan string
	replaceChan chan []ScheduleEvent
	lenChan     chan chan int
	done        chan struct{}
	ctx         context.Context
}

// New creates and starts a Scheduler. onTrigger runs on the scheduler
// goroutine with the id of each due reminder, so it must not block or call
// back into the Scheduler. The goroutine exits when ctx is cancelled.
//
// The request channels are unbuffered, so requests made by one goroutine
// are applied in the order they were made.
func New(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:     make(chan ScheduleEvent),
		removeChan:  make(chan string),
		replaceChan: make(chan []ScheduleEvent),
		lenChan:     make(chan chan int),
		done:        make(chan struct{}),
		ctx:         ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add queues an event. An event already queued for the same reminder is
// replaced.
func (s *Scheduler) Add(event ScheduleEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove drops the queued event for id, if any.
func (s *Scheduler) Remove(id string) {
	select {
	case s.removeChan <- id:
	case <-s.ctx.Done():
	}
}

// Replace discards every queued event and queues events instead.
func (s *Scheduler) Replace(events []ScheduleEvent) {
	select {
	case s.replaceChan <- events:
	case <-s.ctx.Done():
	}
}

// Len returns the number of queued events, or 0 once stopped.
func (s *Scheduler) Len() int {
	reply := make(chan int, 1)
	select {
	case s.lenChan <- reply:
	case <-s.ctx.Done():
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-s.ctx.Done():
		return 0
	}
}

// Done is closed when the scheduler goroutine has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) run(onTrigger func(string)) {
	defer close(s.done)

	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			return nil
		}
		dur := time.Until((*h)[0].TriggerAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case id := <-s.removeChan:
			heapRemoveByID(h, id)
			timerCh = resetTimer()

		case events := <-s.replaceChan:
			heapReset(h, events)
			timerCh = resetTimer()

		case reply := <-s.lenChan:
			reply <- h.Len()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				onTrigger(heapPop(h).ReminderID)
			}
			timerCh = resetTimer()
		}
	}
}

// LoadSchedules partitions stored reminders at startup. Reminders whose
// trigger time is not after now are returned in expired; the rest become
// events for the heap, in store order.
func LoadSchedules(rs []reminder.Reminder, now time.Time) (expired []reminder.Reminder, future []ScheduleEvent) {
	for _, r := range rs {
		if r.Expired(now) {
			expired = append(expired, r)
			continue
		}
		future = append(future, ScheduleEvent{
			ReminderID: r.ID,
			TriggerAt:  r.Trigger(),
		})
	}
	return expired, future
}
