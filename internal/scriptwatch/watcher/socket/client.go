package socket

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// Client provides a client interface to communicate with the watcher host
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new watcher client
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = types.DefaultWatcherConfig.SocketPath
	}
	return &Client{
		socketPath: socketPath,
		timeout:    30 * time.Second,
	}
}

// SetTimeout sets the connection timeout for the client
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// SendCommand sends a command to the watcher and returns the response
func (c *Client) SendCommand(action string, data map[string]interface{}) (*types.WatcherResponse, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to watcher socket %s: %w", c.socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	cmd := types.WatcherCommand{
		Action: action,
		Data:   data,
	}

	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	var response types.WatcherResponse
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}

// Status gets the current watcher status
func (c *Client) Status() (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionStatus, nil)
}

// StartWatch asks an idle host to start watching again
func (c *Client) StartWatch() (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionStartWatch, nil)
}

// StopWatch asks the host to stop watching while it keeps running
func (c *Client) StopWatch() (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionStopWatch, nil)
}

// RequestReload sets the one-shot force reload flag on the host
func (c *Client) RequestReload() (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionRequestReload, nil)
}

// GetLogs gets recent logs from the journal
func (c *Client) GetLogs(limit int) (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionGetLogs, map[string]interface{}{
		"limit": limit,
	})
}

// GetLoads gets load attempt history, optionally filtered by status
func (c *Client) GetLoads(status string, limit int) (*types.WatcherResponse, error) {
	data := map[string]interface{}{
		"limit": limit,
	}
	if status != "" {
		data["status"] = status
	}
	return c.SendCommand(types.ActionGetLoads, data)
}

// GetGlobals gets the bindings of the live namespace
func (c *Client) GetGlobals() (*types.WatcherResponse, error) {
	return c.SendCommand(types.ActionGetGlobals, nil)
}

// IsWatcherRunning checks if the watcher host answers on its socket
func (c *Client) IsWatcherRunning() bool {
	response, err := c.Status()
	return err == nil && response.Success
}

// WaitForWatcher waits for the watcher host to become available
func (c *Client) WaitForWatcher(maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if c.IsWatcherRunning() {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("watcher did not become available within %v", maxWait)
}
