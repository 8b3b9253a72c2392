//go:build windows

package cmd

import "github.com/warpdl/reminder/pkg/logger"

const eventSource = "ReminderDaemon"

// platformLogger mirrors daemon logs into the Windows Event Log when the
// source can be opened.
func platformLogger() logger.Logger {
	l, err := logger.NewEventLogger(eventSource)
	if err != nil {
		return nil
	}
	return l
}
