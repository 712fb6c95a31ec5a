// Package daemon provides daemon process management for the watcher host
package daemon

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// Daemon states reported by GetDaemonStatus
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusDead    = "dead"
	StatusError   = "error"
)

// stopGrace is how long StopDaemon waits after SIGTERM before SIGKILL
var stopGrace = 2 * time.Second

// GetDaemonStatus returns the status of the daemon host
func GetDaemonStatus(pidFile string) map[string]interface{} {
	status := map[string]interface{}{
		"daemon":   false,
		"pid_file": pidFile,
	}

	pid, err := ReadPIDFromFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			status["status"] = StatusStopped
			status["message"] = "PID file not found"
		} else {
			status["status"] = StatusError
			status["message"] = err.Error()
		}
		return status
	}

	status["pid"] = pid

	if !processAlive(pid) {
		status["status"] = StatusDead
		if removeErr := os.Remove(pidFile); removeErr != nil && !os.IsNotExist(removeErr) {
			status["message"] = fmt.Sprintf("Process not running, failed to clean stale PID file: %v", removeErr)
		} else {
			status["message"] = "Process not running (cleaned up stale PID file)"
		}
		return status
	}

	status["daemon"] = true
	status["status"] = StatusRunning
	status["message"] = "Daemon is running"
	return status
}

// processAlive sends signal 0 to check if the process exists
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// StopDaemon stops the daemon host
func StopDaemon(pidFile string) error {
	pid, err := ReadPIDFromFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("daemon is not running (PID file not found)")
		}
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to process %d: %w", pid, err)
	}

	// Give the host time to finish an in-flight tick
	time.Sleep(stopGrace)

	if processAlive(pid) {
		log.Info("Process still running, sending SIGKILL...")
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to kill process %d: %w", pid, err)
		}
	}

	if err := os.Remove(pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}

	log.Info("✅ Script watcher daemon stopped successfully")
	return nil
}
