package common

import "time"

const (
	// DefaultDataDirName is created under the user's home directory.
	DefaultDataDirName = ".reminder-skill-data"
	// JSONStoreFile is the store document name for the json backend.
	JSONStoreFile = "reminders.json"
	// SQLiteStoreFile is the database name for the sqlite backend.
	SQLiteStoreFile = "reminders.db"
	// LogFileName is the JSON log sink inside the data directory.
	LogFileName = "reminder.log"
	// PidFileName records the delivery daemon's process id.
	PidFileName = "daemon.pid"
	// ConfigFileName is looked up inside the data directory.
	ConfigFileName = "config.yaml"

	DefaultRemoteHost    = "localhost"
	DefaultRemotePort    = 3579
	DefaultRemoteTimeout = 500 * time.Millisecond
)

// Tool names exposed to the front door.
const (
	ToolCreateReminder = "create_reminder"
	ToolListReminders  = "list_reminders"
	ToolCancelReminder = "cancel_reminder"
)
