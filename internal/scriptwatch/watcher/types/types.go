//nolint:revive // Package types provides type definitions for the watcher
package types

import (
	"time"
)

// WatcherCommand represents commands that can be sent to the watcher via socket
type WatcherCommand struct {
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// WatcherResponse represents responses from the watcher
type WatcherResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Socket actions understood by the host
const (
	ActionStatus        = "status"
	ActionStartWatch    = "start_watch"
	ActionStopWatch     = "stop_watch"
	ActionRequestReload = "request_reload"
	ActionGetLogs       = "get_logs"
	ActionGetLoads      = "get_loads"
	ActionGetGlobals    = "get_globals"
)

// Load triggers recorded in the journal
const (
	TriggerInitial = "initial"
	TriggerForced  = "forced"
	TriggerChange  = "change"
)

// WatcherLog represents a log entry in the database
type WatcherLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component"`
	Script    string    `json:"script,omitempty"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration,omitempty"` // milliseconds
}

// LoadAttempt represents one load of the watched script in the database
type LoadAttempt struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Script     string    `json:"script"`
	Trigger    string    `json:"trigger"` // initial, forced, change
	Status     string    `json:"status"`  // loaded, failed
	Generation int64     `json:"generation,omitempty"`
	ModTime    time.Time `json:"mod_time"`
	Duration   int64     `json:"duration,omitempty"` // nanoseconds
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
}
