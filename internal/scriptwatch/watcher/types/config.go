package types

import (
	"time"
)

// WatcherConfig holds configuration for the watcher host
type WatcherConfig struct {
	ScriptPath    string        // Script file to watch
	RunEntrypoint bool          // Call main() after the script body
	ShowInConsole bool          // Surface captured output on the console
	AutoStart     bool          // Start watching as soon as the host is up
	PollInterval  time.Duration // Tick interval
	RetryFailed   bool          // Retry a version that already failed on every tick
	Notify        bool          // Use fsnotify events to tick early
	DaemonMode    bool          // Run the host as a daemon
	PidFile       string        // PID file location
	LogFile       string        // Log file location
	// Database configuration
	DatabaseEnabled bool   // Enable the sqlite journal
	DatabasePath    string // SQLite database file path
	// Socket configuration
	SocketEnabled bool   // Enable socket server
	SocketPath    string // Unix socket path for communication
}

// DefaultWatcherConfig provides default configuration values
var DefaultWatcherConfig = WatcherConfig{
	ShowInConsole:   true,
	PollInterval:    500 * time.Millisecond,
	Notify:          true,
	DaemonMode:      true,
	PidFile:         ".scriptwatch/watcher.pid",
	LogFile:         ".scriptwatch/watcher.log",
	DatabaseEnabled: true,
	DatabasePath:    ".scriptwatch/watcher.db",
	SocketEnabled:   true,
	SocketPath:      ".scriptwatch/watcher.sock",
}

// WithDefaults fills zero-valued host settings from DefaultWatcherConfig
func (c WatcherConfig) WithDefaults() WatcherConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultWatcherConfig.PollInterval
	}
	if c.PidFile == "" {
		c.PidFile = DefaultWatcherConfig.PidFile
	}
	if c.LogFile == "" {
		c.LogFile = DefaultWatcherConfig.LogFile
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultWatcherConfig.DatabasePath
	}
	if c.SocketPath == "" {
		c.SocketPath = DefaultWatcherConfig.SocketPath
	}
	return c
}
