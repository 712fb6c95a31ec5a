//nolint:revive // Handler methods follow interface patterns with some unused parameters
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/loader"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/socket"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// StatusData builds the status report served on the socket
func (w *Watcher) StatusData() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := map[string]interface{}{
		"status":           w.State().String(),
		"script":           w.target.Path,
		"module":           w.target.ModuleName,
		"entrypoint":       w.target.RunEntrypoint,
		"load_state":       w.loader.State().String(),
		"reload_pending":   w.reloadRequested.Load(),
		"poll_interval":    w.config.PollInterval.String(),
		"notify":           w.config.Notify,
		"database_enabled": w.config.DatabaseEnabled,
		"socket_enabled":   w.config.SocketEnabled,
		"pid":              os.Getpid(),
	}

	if cur := w.loader.Current(); cur != nil {
		status["generation"] = cur.Generation
		status["last_mod_time"] = cur.ModTime.Format(time.RFC3339Nano)
		status["loaded_at"] = cur.LoadedAt.Format(time.RFC3339Nano)
	} else {
		status["generation"] = 0
	}
	if err := w.loader.LastError(); err != nil {
		status["last_error"] = err.Error()
	}
	return status
}

// HandleStatusCommand implements socket.Handler
func (w *Watcher) HandleStatusCommand(cmd types.WatcherCommand) types.WatcherResponse {
	return types.WatcherResponse{
		Success: true,
		Message: "Watcher status retrieved successfully",
		Data:    w.StatusData(),
	}
}

// HandleStartWatchCommand implements socket.Handler
func (w *Watcher) HandleStartWatchCommand(cmd types.WatcherCommand) types.WatcherResponse {
	if w.Running() {
		return types.WatcherResponse{Success: true, Message: "Already watching " + w.target.Path}
	}
	if err := w.StartWatch(w.hostContext()); err != nil {
		return types.WatcherResponse{Success: false, Error: err.Error()}
	}
	return types.WatcherResponse{Success: true, Message: "Watching " + w.target.Path}
}

// HandleStopWatchCommand implements socket.Handler
func (w *Watcher) HandleStopWatchCommand(cmd types.WatcherCommand) types.WatcherResponse {
	if !w.Running() {
		return types.WatcherResponse{Success: true, Message: "Watcher is already idle"}
	}
	w.StopWatch()
	return types.WatcherResponse{Success: true, Message: "Stopped watching " + w.target.Path}
}

// HandleRequestReloadCommand implements socket.Handler
func (w *Watcher) HandleRequestReloadCommand(cmd types.WatcherCommand) types.WatcherResponse {
	w.RequestReload()
	msg := "Reload requested"
	if !w.Running() {
		msg += " (applies when watching resumes)"
	}
	return types.WatcherResponse{Success: true, Message: msg}
}

// HandleGetLogsCommand implements socket.Handler
func (w *Watcher) HandleGetLogsCommand(cmd types.WatcherCommand) types.WatcherResponse {
	if !w.config.DatabaseEnabled {
		return types.WatcherResponse{Success: false, Error: "Database logging is disabled"}
	}

	logs, err := w.db.GetRecentLogs(socket.IntParam(cmd, "limit", 100))
	if err != nil {
		return types.WatcherResponse{Success: false, Error: fmt.Sprintf("Failed to get logs: %v", err)}
	}

	return types.WatcherResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d log entries", len(logs)),
		Data:    map[string]interface{}{"logs": logs},
	}
}

// HandleGetLoadsCommand implements socket.Handler
func (w *Watcher) HandleGetLoadsCommand(cmd types.WatcherCommand) types.WatcherResponse {
	if !w.config.DatabaseEnabled {
		return types.WatcherResponse{Success: false, Error: "Database logging is disabled"}
	}

	loads, err := w.db.GetLoadAttempts(socket.StringParam(cmd, "status"), socket.IntParam(cmd, "limit", 50))
	if err != nil {
		return types.WatcherResponse{Success: false, Error: fmt.Sprintf("Failed to get load history: %v", err)}
	}

	return types.WatcherResponse{
		Success: true,
		Message: fmt.Sprintf("Retrieved %d load attempts", len(loads)),
		Data:    map[string]interface{}{"loads": loads},
	}
}

// HandleGetGlobalsCommand implements socket.Handler
func (w *Watcher) HandleGetGlobalsCommand(cmd types.WatcherCommand) types.WatcherResponse {
	var resp types.WatcherResponse
	w.WithNamespace(func(ns *loader.Namespace, generation int64) {
		if ns == nil {
			resp = types.WatcherResponse{Success: false, Error: "No version of the script is loaded"}
			return
		}
		globals := ns.Globals()
		resp = types.WatcherResponse{
			Success: true,
			Message: fmt.Sprintf("Namespace defines %d globals", len(globals)),
			Data: map[string]interface{}{
				"identity":   ns.Identity(),
				"generation": generation,
				"globals":    globals,
			},
		}
	})
	return resp
}

// hostContext is the context watches started over the socket run under
func (w *Watcher) hostContext() context.Context {
	return w.ctx
}
