package daemon

import (
	"encoding/json"
	"fmt"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// ShowStatus displays the daemon status
func ShowStatus(pidFile, logFile string, jsonOutput bool) error {
	daemonStatus := GetDaemonStatus(pidFile)
	isDaemon, _ := daemonStatus["daemon"].(bool)
	daemonState, _ := daemonStatus["status"].(string)

	if jsonOutput {
		return outputStatusJSON(daemonStatus, pidFile, logFile)
	}

	log.Info("🔍 Script Watcher Daemon")
	log.Info("==========================================")

	switch {
	case isDaemon && daemonState == StatusRunning:
		log.Info("🟢 Status: RUNNING (Daemon Mode)")
		if pid, ok := daemonStatus["pid"]; ok {
			log.Info("📄 Process ID: %v", pid)
		}
		log.Info("📄 PID File: %s", pidFile)
		log.Info("📝 Log File: %s", logFile)
		ShowRecentLogs(logFile)

	case daemonState == StatusDead:
		log.Info("🟡 Status: STOPPED (Stale PID file found)")
		log.Info("💬 A previous daemon process was running but is no longer active")
		log.Info("📄 Stale PID File: %s", pidFile)
		log.Info("🔧 Suggestion: Run 'scriptwatch watch start' to start a new daemon")

	case daemonState == StatusStopped:
		log.Info("⚫ Status: NOT RUNNING")
		log.Info("💬 No daemon is currently running")
		log.Info("📄 PID File: %s (not found)", pidFile)
		log.Info("🔧 Suggestion: Run 'scriptwatch watch start' to start the daemon")

	default:
		log.Info("🔴 Status: ERROR")
		if msg, ok := daemonStatus["message"]; ok {
			log.Info("💬 %s", msg)
		}
		log.Info("📄 PID File: %s", pidFile)
	}

	log.Info("")
	log.Info("🛠️  Available Commands:")
	log.Info("   - Start daemon:   scriptwatch watch start")
	log.Info("   - Stop daemon:    scriptwatch watch stop")
	log.Info("   - Run foreground: scriptwatch watch start --foreground")

	return nil
}

// StatusJSON builds the machine-readable daemon status
func StatusJSON(daemonStatus map[string]interface{}, pidFile, logFile string) map[string]interface{} {
	isDaemon, _ := daemonStatus["daemon"].(bool)
	daemonState, _ := daemonStatus["status"].(string)

	jsonStatus := map[string]interface{}{
		"daemon_running": isDaemon && daemonState == StatusRunning,
		"status":         daemonState,
		"pid_file":       pidFile,
		"log_file":       logFile,
	}

	if isDaemon && daemonState == StatusRunning {
		if pid, ok := daemonStatus["pid"]; ok {
			jsonStatus["pid"] = pid
		}
	}

	if msg, ok := daemonStatus["message"]; ok {
		jsonStatus["message"] = msg
	}
	return jsonStatus
}

// outputStatusJSON outputs status in JSON format
func outputStatusJSON(daemonStatus map[string]interface{}, pidFile, logFile string) error {
	jsonData, err := json.MarshalIndent(StatusJSON(daemonStatus, pidFile, logFile), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status to JSON: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}
