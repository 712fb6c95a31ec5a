// Package watcher provides live reloading of a single Lua script inside a
// long-running host process
//
//nolint:revive // Watcher type names mirror the core package
package watcher

import (
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/core"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/loader"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/socket"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// Re-export core types for callers outside the watcher tree
type (
	// Watcher is the reload driver and host
	Watcher = core.Watcher

	// WatcherConfig holds configuration for the watcher
	WatcherConfig = types.WatcherConfig

	// WatcherCommand represents commands sent to the watcher via socket
	WatcherCommand = types.WatcherCommand

	// WatcherResponse represents responses from the watcher
	WatcherResponse = types.WatcherResponse

	// WatcherLog represents a journal log entry
	WatcherLog = types.WatcherLog

	// LoadAttempt represents one journalled load
	LoadAttempt = types.LoadAttempt

	// WatcherClient provides client interface for the watcher daemon
	WatcherClient = socket.Client

	// Outcome is the result of a tick
	Outcome = loader.Outcome
)

// Re-export outcomes
const (
	NoChange = loader.NoChange
	Loaded   = loader.Loaded
	Failed   = loader.Failed
)

// DefaultWatcherConfig re-exports the default configuration
var DefaultWatcherConfig = types.DefaultWatcherConfig

// NewWatcher creates a watcher host for config.ScriptPath
func NewWatcher(config WatcherConfig, opts ...loader.Option) (*Watcher, error) {
	return core.New(config, opts...)
}

// NewWatcherClient creates a new watcher client for communicating with the daemon
func NewWatcherClient(socketPath string) *WatcherClient {
	return socket.NewClient(socketPath)
}

// GetDaemonStatus returns the status of the daemon host
func GetDaemonStatus(pidFile string) map[string]interface{} {
	return core.GetDaemonStatus(pidFile)
}

// StopDaemon stops the daemon host
func StopDaemon(pidFile string) error {
	return core.StopDaemon(pidFile)
}

// ShowStatus displays the daemon status
func ShowStatus(pidFile, logFile string, jsonOutput bool) error {
	return core.ShowStatus(pidFile, logFile, jsonOutput)
}

// FollowLogs follows the daemon log file
func FollowLogs(logFile string) error {
	return core.FollowLogs(logFile)
}
