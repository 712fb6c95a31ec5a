package socket

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StreamLiveLogs streams journal logs in real-time
func (c *Client) StreamLiveLogs(limit int, interval time.Duration) error {
	fmt.Printf("📡 Live Journal Logs (refreshing every %v)\n", interval)
	fmt.Println("==========================================")
	fmt.Println("Press Ctrl+C to stop streaming")
	fmt.Println()

	var lastLogID int64

	for {
		response, err := c.GetLogs(limit)
		if err != nil {
			fmt.Printf("❌ Error getting logs: %v\n", err)
			time.Sleep(interval)
			continue
		}

		if !response.Success {
			fmt.Printf("❌ Failed to get logs: %s\n", response.Error)
			time.Sleep(interval)
			continue
		}

		if data, ok := response.Data["logs"].([]interface{}); ok && len(data) > 0 {
			lastLogID = printNewLogs(data, lastLogID)
		}

		time.Sleep(interval)
	}
}

// printNewLogs prints entries newer than lastID oldest first and returns the
// highest id seen. The host returns entries newest first.
func printNewLogs(data []interface{}, lastID int64) int64 {
	highest := lastID
	for i := len(data) - 1; i >= 0; i-- {
		logMap, ok := data[i].(map[string]interface{})
		if !ok {
			continue
		}
		idFloat, ok := logMap["id"].(float64)
		if !ok || int64(idFloat) <= lastID {
			continue
		}
		displayLogEntry(logMap)
		if int64(idFloat) > highest {
			highest = int64(idFloat)
		}
	}
	return highest
}

// formatTimestamp formats a timestamp interface value
func formatTimestamp(ts interface{}) string {
	t, ok := ts.(string)
	if !ok {
		return ""
	}
	if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
		return parsed.Local().Format("15:04:05")
	}
	return t
}

// displayLogEntry formats and displays a single log entry
func displayLogEntry(logMap map[string]interface{}) {
	timestamp, level, component, message := extractLogData(logMap)

	script := ""
	if sc, ok := logMap["script"].(string); ok && sc != "" {
		script = fmt.Sprintf("[%s]", sc)
	}

	fmt.Printf("[%s] %s %s %s %s\n", timestamp, getLevelIcon(level), component, script, message)
	if errText, ok := logMap["error"].(string); ok && errText != "" {
		for _, line := range strings.Split(strings.TrimRight(errText, "\n"), "\n") {
			fmt.Printf("      %s\n", line)
		}
	}
}

// extractLogData extracts log data from a log map
func extractLogData(logMap map[string]interface{}) (timestamp, level, component, message string) {
	timestamp = formatTimestamp(logMap["timestamp"])
	level, _ = logMap["level"].(string)
	component, _ = logMap["component"].(string)
	message, _ = logMap["message"].(string)
	return
}

// getLevelIcon returns the appropriate icon for a log level
func getLevelIcon(level string) string {
	switch level {
	case "ERROR":
		return "❌"
	case "WARN":
		return "⚠️"
	case "INFO":
		return "ℹ️"
	case "DEBUG":
		return "🔍"
	default:
		return "ℹ️"
	}
}

// printStatusInfo prints the watch state of the host
func printStatusInfo(data map[string]interface{}) {
	switch state, _ := data["status"].(string); state {
	case "watching":
		fmt.Println("🟢 Status: WATCHING")
	case "idle":
		fmt.Println("🟡 Status: IDLE (host up, not watching)")
	default:
		fmt.Println("🔴 Status: UNKNOWN")
	}

	if script, ok := data["script"].(string); ok {
		fmt.Printf("📄 Script: %s\n", script)
	}
	if module, ok := data["module"].(string); ok {
		mode := "program"
		if entry, _ := data["entrypoint"].(bool); entry {
			mode = "entrypoint"
		}
		fmt.Printf("📦 Module: %s (%s mode)\n", module, mode)
	}
	if state, ok := data["load_state"].(string); ok {
		fmt.Printf("⚙️  Load State: %s\n", state)
	}
	if gen, ok := data["generation"].(float64); ok {
		fmt.Printf("🔢 Generation: %.0f\n", gen)
	}
	if mod, ok := data["last_mod_time"].(string); ok && mod != "" {
		fmt.Printf("🕒 Loaded Version: %s\n", formatTimestamp(mod))
	}
	if pending, ok := data["reload_pending"].(bool); ok && pending {
		fmt.Println("🔁 Forced reload pending")
	}
	if lastErr, ok := data["last_error"].(string); ok && lastErr != "" {
		fmt.Println("❗ Last Error:")
		for _, line := range strings.Split(strings.TrimRight(lastErr, "\n"), "\n") {
			fmt.Printf("   %s\n", line)
		}
	}
}

// printFeatureStatus prints database and socket status
func printFeatureStatus(data map[string]interface{}) {
	if dbEnabled, ok := data["database_enabled"].(bool); ok {
		status := "DISABLED"
		if dbEnabled {
			status = "ENABLED"
		}
		fmt.Printf("🗄️  Journal: %s\n", status)
	}

	if notify, ok := data["notify"].(bool); ok {
		status := "DISABLED"
		if notify {
			status = "ENABLED"
		}
		fmt.Printf("👀 Change Notifications: %s\n", status)
	}
}

// printAvailableCommands prints the list of available commands
func printAvailableCommands() {
	fmt.Println("\n🛠️  Available Commands:")
	fmt.Println("   scriptwatch watch reload")
	fmt.Println("   scriptwatch watch stop [--keep-host]")
	fmt.Println("   scriptwatch watch logs [--db] [--limit N]")
	fmt.Println("   scriptwatch watch history [--status failed]")
	fmt.Println("   scriptwatch watch globals")
}

// PrintStatus prints a formatted status report
func (c *Client) PrintStatus() error {
	response, err := c.Status()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("status request failed: %s", response.Error)
	}

	fmt.Println("🔍 Script Watcher Status")
	fmt.Println("==========================================")

	printStatusInfo(response.Data)
	printFeatureStatus(response.Data)
	printAvailableCommands()

	return nil
}

// PrintLogs prints formatted recent logs
func (c *Client) PrintLogs(limit int) error {
	response, err := c.GetLogs(limit)
	if err != nil {
		return fmt.Errorf("failed to get logs: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("get logs request failed: %s", response.Error)
	}

	fmt.Printf("📋 Recent Logs (last %d entries)\n", limit)
	fmt.Println("==========================================")

	data, ok := response.Data["logs"].([]interface{})
	if !ok || len(data) == 0 {
		fmt.Println("No logs available.")
		return nil
	}

	for _, logInterface := range data {
		if logMap, ok := logInterface.(map[string]interface{}); ok {
			displayLogEntry(logMap)
		}
	}

	return nil
}

// formatDuration formats a duration in nanoseconds to a human-readable string
func formatDuration(durationNs float64) string {
	if durationNs == 0 {
		return ""
	}
	switch {
	case durationNs >= 1000000000:
		return fmt.Sprintf("%.1fs", durationNs/1000000000)
	case durationNs >= 1000000:
		return fmt.Sprintf("%.0fms", durationNs/1000000)
	default:
		return fmt.Sprintf("%.0fμs", durationNs/1000)
	}
}

// PrintLoads prints the load attempt history, newest first
func (c *Client) PrintLoads(status string, limit int) error {
	response, err := c.GetLoads(status, limit)
	if err != nil {
		return fmt.Errorf("failed to get load history: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("get loads request failed: %s", response.Error)
	}

	fmt.Println("📜 Load History")
	fmt.Println("==========================================")

	data, ok := response.Data["loads"].([]interface{})
	if !ok || len(data) == 0 {
		fmt.Println("No load attempts recorded.")
		return nil
	}

	for _, item := range data {
		attempt, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		printLoadAttempt(attempt)
	}
	return nil
}

func printLoadAttempt(attempt map[string]interface{}) {
	status, _ := attempt["status"].(string)
	trigger, _ := attempt["trigger"].(string)
	gen, _ := attempt["generation"].(float64)
	duration, _ := attempt["duration"].(float64)

	icon := "✅"
	if status == "failed" {
		icon = "❌"
	}

	fmt.Printf("[%s] %s %-6s %-7s gen=%.0f", formatTimestamp(attempt["timestamp"]), icon, status, trigger, gen)
	if d := formatDuration(duration); d != "" {
		fmt.Printf(" (%s)", d)
	}
	fmt.Println()

	if errText, ok := attempt["error"].(string); ok && errText != "" {
		for _, line := range strings.Split(strings.TrimRight(errText, "\n"), "\n") {
			fmt.Printf("      %s\n", line)
		}
	}
}

// PrintGlobals prints the script-defined globals of the live namespace
func (c *Client) PrintGlobals() error {
	response, err := c.GetGlobals()
	if err != nil {
		return fmt.Errorf("failed to get globals: %w", err)
	}

	if !response.Success {
		return fmt.Errorf("get globals request failed: %s", response.Error)
	}

	identity, _ := response.Data["identity"].(string)
	fmt.Printf("🧩 Namespace Globals (%s)\n", identity)
	fmt.Println("==========================================")

	globals, ok := response.Data["globals"].(map[string]interface{})
	if !ok || len(globals) == 0 {
		fmt.Println("No globals defined.")
		return nil
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %v\n", name, globals[name])
	}
	return nil
}
