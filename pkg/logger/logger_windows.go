//go:build windows

package logger

import (
	"fmt"

	"golang.org/x/sys/windows/svc/eventlog"
)

// Event IDs used for reminder entries in the Windows Event Log.
const (
	EventIDInfo    uint32 = 1
	EventIDWarning uint32 = 2
	EventIDError   uint32 = 3
)

// eventWriter is the subset of *eventlog.Log the EventLogger needs.
type eventWriter interface {
	Info(eid uint32, msg string) error
	Warning(eid uint32, msg string) error
	Error(eid uint32, msg string) error
	Close() error
}

// EventLogger mirrors delivery daemon messages into the Windows Event Log,
// where a detached daemon without a console can still be diagnosed.
type EventLogger struct {
	w eventWriter
}

// NewEventLogger opens sourceName, registering it first when it does not
// exist yet. Registration needs administrator rights; without them the
// call fails and the caller should carry on without this sink.
func NewEventLogger(sourceName string) (*EventLogger, error) {
	w, err := eventlog.Open(sourceName)
	if err != nil {
		if ierr := eventlog.InstallAsEventCreate(sourceName, eventlog.Error|eventlog.Warning|eventlog.Info); ierr != nil {
			return nil, fmt.Errorf("failed to open event log: %w", err)
		}
		if w, err = eventlog.Open(sourceName); err != nil {
			return nil, fmt.Errorf("failed to open event log: %w", err)
		}
	}
	return &EventLogger{w: w}, nil
}

func (e *EventLogger) Info(format string, args ...interface{}) {
	_ = e.w.Info(EventIDInfo, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Warning(format string, args ...interface{}) {
	_ = e.w.Warning(EventIDWarning, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Error(format string, args ...interface{}) {
	_ = e.w.Error(EventIDError, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Close() error {
	if e.w == nil {
		return nil
	}
	return e.w.Close()
}

var _ Logger = (*EventLogger)(nil)
