// Package common provides the constants and wire types shared by the
// reminder front door, the dispatcher and the remote peer client.
package common

// Environment variable names for configuration.
const (
	// DataDirEnv overrides the directory holding the store, pidfile and logs.
	DataDirEnv = "REMINDER_DATA_DIR"
	// ConfigFileEnv points at an explicit YAML config file.
	ConfigFileEnv = "REMINDER_CONFIG"
	// RemoteHostEnv is the remote coordinator host.
	RemoteHostEnv = "CCCORE_HOST"
	// RemotePortEnv is the remote coordinator HTTP port.
	RemotePortEnv = "CCCORE_HTTP_PORT"
	// RemoteTimeoutEnv bounds each remote call, in Go duration syntax.
	RemoteTimeoutEnv = "REMINDER_REMOTE_TIMEOUT"
	// RemoteDisabledEnv skips the remote peer entirely when set to a true value.
	RemoteDisabledEnv = "REMINDER_REMOTE_DISABLED"
	// StoreBackendEnv selects the store backend ("json" or "sqlite").
	StoreBackendEnv = "REMINDER_STORE_BACKEND"
	// DeliveryModeEnv selects how delivery workers run ("process", "daemon", "inline").
	DeliveryModeEnv = "REMINDER_DELIVERY_MODE"
	// DebugEnv enables the JSON log file sink.
	DebugEnv = "REMINDER_DEBUG"
)
