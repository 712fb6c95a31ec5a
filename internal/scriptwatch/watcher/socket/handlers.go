package socket

import (
	"fmt"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// Handler is implemented by the watcher host, one method per action
type Handler interface {
	HandleStatusCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleStartWatchCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleStopWatchCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleRequestReloadCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleGetLogsCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleGetLoadsCommand(cmd types.WatcherCommand) types.WatcherResponse
	HandleGetGlobalsCommand(cmd types.WatcherCommand) types.WatcherResponse
}

// DefaultCommandHandler implements CommandHandler by routing to Handler methods
type DefaultCommandHandler struct {
	handler Handler
}

// NewDefaultCommandHandler creates a new default command handler
func NewDefaultCommandHandler(handler Handler) *DefaultCommandHandler {
	return &DefaultCommandHandler{handler: handler}
}

// HandleCommand processes a socket command
func (h *DefaultCommandHandler) HandleCommand(cmd types.WatcherCommand) types.WatcherResponse {
	switch cmd.Action {
	case types.ActionStatus:
		return h.handler.HandleStatusCommand(cmd)
	case types.ActionStartWatch:
		return h.handler.HandleStartWatchCommand(cmd)
	case types.ActionStopWatch:
		return h.handler.HandleStopWatchCommand(cmd)
	case types.ActionRequestReload:
		return h.handler.HandleRequestReloadCommand(cmd)
	case types.ActionGetLogs:
		return h.handler.HandleGetLogsCommand(cmd)
	case types.ActionGetLoads:
		return h.handler.HandleGetLoadsCommand(cmd)
	case types.ActionGetGlobals:
		return h.handler.HandleGetGlobalsCommand(cmd)
	default:
		return types.WatcherResponse{
			Success: false,
			Error:   fmt.Sprintf("Unknown command: %s", cmd.Action),
		}
	}
}

// IntParam reads a numeric parameter from command data; JSON numbers decode
// as float64
func IntParam(cmd types.WatcherCommand, key string, fallback int) int {
	if cmd.Data == nil {
		return fallback
	}
	switch v := cmd.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// StringParam reads a string parameter from command data
func StringParam(cmd types.WatcherCommand, key string) string {
	if cmd.Data == nil {
		return ""
	}
	s, _ := cmd.Data[key].(string)
	return s
}
