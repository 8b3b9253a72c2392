// Package scheduler keeps pending reminders in a min-heap ordered by
// trigger time and fires each one from a single goroutine. Sleeps are
// capped at 60 seconds so NTP steps, DST changes and system suspend
// (which pauses the monotonic clock on macOS) delay a reminder by at most
// a minute.
//
// The heap is in-memory only. The delivery daemon rebuilds it from the
// reminder store on start and on every resync.
package scheduler
