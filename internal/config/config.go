// Package config loads the reminder configuration from defaults, an
// optional YAML file and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warpdl/reminder/common"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Delivery modes.
const (
	// ModeProcess spawns one detached worker process per reminder.
	ModeProcess = "process"
	// ModeDaemon hands reminders to a single long-lived delivery daemon.
	ModeDaemon = "daemon"
	// ModeInline runs workers as goroutines of the current process.
	ModeInline = "inline"
)

// Sentinel validation errors.
var (
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrUnknownMode    = errors.New("unknown delivery mode")
	ErrBadTimeout     = errors.New("remote timeout must be positive")
	ErrBadPort        = errors.New("remote port out of range")
)

// Config is the full reminder configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Store    StoreConfig    `yaml:"store"`
	Remote   RemoteConfig   `yaml:"remote"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Log      LogConfig      `yaml:"log"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path overrides the default store location inside DataDir.
	Path string `yaml:"path"`
}

type RemoteConfig struct {
	Enabled bool          `yaml:"enabled"`
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

type DeliveryConfig struct {
	Mode string `yaml:"mode"`
	// SkipCancelled makes process and inline workers re-check the store
	// before rendering, so a reminder cancelled while armed stays silent.
	SkipCancelled bool `yaml:"skip_cancelled"`
	// ResyncInterval is how often the daemon re-reads the store even
	// without filesystem events.
	ResyncInterval time.Duration `yaml:"resync_interval"`
}

type LogConfig struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Store:   StoreConfig{Backend: BackendJSON},
		Remote: RemoteConfig{
			Enabled: true,
			Host:    common.DefaultRemoteHost,
			Port:    common.DefaultRemotePort,
			Timeout: common.DefaultRemoteTimeout,
		},
		Delivery: DeliveryConfig{
			Mode:           ModeProcess,
			ResyncInterval: 30 * time.Second,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), common.DefaultDataDirName)
	}
	return filepath.Join(home, common.DefaultDataDirName)
}

// Load builds the configuration: defaults, then the YAML file named by
// REMINDER_CONFIG or <data_dir>/config.yaml if present, then environment
// overrides. The result is validated.
func Load() (*Config, error) {
	cfg := Default()
	if dir := os.Getenv(common.DataDirEnv); dir != "" {
		cfg.DataDir = dir
	}

	path := os.Getenv(common.ConfigFileEnv)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, common.ConfigFileName)
	}
	if err := cfg.loadFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if dir := os.Getenv(common.DataDirEnv); dir != "" {
		c.DataDir = dir
	}
	if host := os.Getenv(common.RemoteHostEnv); host != "" {
		c.Remote.Host = host
	}
	if port := os.Getenv(common.RemotePortEnv); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", common.RemotePortEnv, port, err)
		}
		c.Remote.Port = p
	}
	if timeout := os.Getenv(common.RemoteTimeoutEnv); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", common.RemoteTimeoutEnv, timeout, err)
		}
		c.Remote.Timeout = d
	}
	if isTrue(os.Getenv(common.RemoteDisabledEnv)) {
		c.Remote.Enabled = false
	}
	if backend := os.Getenv(common.StoreBackendEnv); backend != "" {
		c.Store.Backend = strings.ToLower(backend)
	}
	if mode := os.Getenv(common.DeliveryModeEnv); mode != "" {
		c.Delivery.Mode = strings.ToLower(mode)
	}
	if isTrue(os.Getenv(common.DebugEnv)) {
		c.Log.Debug = true
	}
	return nil
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	switch c.Delivery.Mode {
	case ModeProcess, ModeDaemon, ModeInline:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Delivery.Mode)
	}
	if c.Remote.Timeout <= 0 {
		return ErrBadTimeout
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrBadPort, c.Remote.Port)
	}
	if c.DataDir == "" {
		return errors.New("data dir is empty")
	}
	return nil
}

// StorePath returns the store location for the configured backend.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(c.DataDir, common.SQLiteStoreFile)
	}
	return filepath.Join(c.DataDir, common.JSONStoreFile)
}

// LogPath returns the JSON log sink location.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, common.LogFileName)
}

// PidPath returns the delivery daemon pidfile location.
func (c *Config) PidPath() string {
	return filepath.Join(c.DataDir, common.PidFileName)
}

// RemoteBaseURL returns the remote peer base URL, e.g. http://localhost:3579.
func (c *Config) RemoteBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Remote.Host, c.Remote.Port)
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
