package reminder

import (
	"errors"
	"fmt"
)

var (
	// ErrIO is wrapped by every store write failure. Callers surface it as a
	// failed operation.
	ErrIO = errors.New("store write failed")

	// ErrRemoteUnavailable covers transport failures, timeouts and
	// unparsable responses from the remote peer.
	ErrRemoteUnavailable = errors.New("remote peer unavailable")

	// ErrTriggerInPast is returned when a reminder would fire before now.
	ErrTriggerInPast = errors.New("trigger time is in the past")

	// ErrEmptyTitle is returned when a reminder is created without a title.
	ErrEmptyTitle = errors.New("title must not be empty")
)

// AcceptedFormats lists the time expressions accepted by the time resolver.
const AcceptedFormats = `Use ISO datetime or relative time (e.g., "in 10 seconds", "in 30 minutes", "in 2 hours", "in 1 day", "in 2 weeks", "in 1 month", "in 1 year")`

// InvalidTimeFormatError is returned when a time expression is neither a
// relative "in N unit" expression nor an absolute datetime.
type InvalidTimeFormatError struct {
	Input string
}

func (e *InvalidTimeFormatError) Error() string {
	return fmt.Sprintf("Invalid time format \"%s\". %s", e.Input, AcceptedFormats)
}

// CorruptStoreError is returned when the persisted document exists but does
// not parse as a list of reminders.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt reminder store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// RemoteRejectedError is returned when the remote peer answered but
// reported ok=false.
type RemoteRejectedError struct {
	Message string
	// Fallback is set when the peer explicitly asked the caller to handle
	// the request locally.
	Fallback bool
}

func (e *RemoteRejectedError) Error() string {
	if e.Message == "" {
		return "remote peer rejected the request"
	}
	return "remote peer rejected the request: " + e.Message
}

// NotificationRenderError wraps a failed platform notification command.
type NotificationRenderError struct {
	Platform string
	Err      error
}

func (e *NotificationRenderError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Platform, e.Err)
}

func (e *NotificationRenderError) Unwrap() error { return e.Err }
