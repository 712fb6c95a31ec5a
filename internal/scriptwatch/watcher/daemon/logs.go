package daemon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tail "github.com/hpcloud/tail"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// recentLineCount is how many trailing log lines ShowRecentLogs prints
const recentLineCount = 5

// LastLines returns up to n trailing non-blank lines of a file
func LastLines(path string, n int) ([]string, error) {
	//nolint:gosec // G304: log file path comes from the watcher settings
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, line)
	}
	return ring, scanner.Err()
}

// ShowRecentLogs displays recent log entries if the log file exists
func ShowRecentLogs(logFile string) {
	if _, err := os.Stat(logFile); err != nil {
		return
	}

	log.Info("")
	log.Info("📋 Recent Activity (last %d lines from log):", recentLineCount)

	lines, err := LastLines(logFile, recentLineCount)
	if err != nil {
		log.Info("   (Unable to read log file)")
		return
	}

	for _, line := range lines {
		log.Info("   %s", line)
	}
}

// FollowLogs follows a log file and displays new content in real-time
func FollowLogs(logFile string) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	t, err := tail.TailFile(logFile, tail.Config{
		ReOpen:    true,
		Follow:    true,
		MustExist: false,
		Poll:      true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		return fmt.Errorf("failed to tail log file: %w", err)
	}
	defer t.Cleanup()

	ShowRecentLogs(logFile)
	fmt.Println()

	for {
		select {
		case <-sigChan:
			fmt.Println("\n📋 Log following stopped.")
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return fmt.Errorf("log tail channel closed")
			}
			if line == nil {
				continue
			}
			if text := formatFollowedLine(line.Text, time.Now()); text != "" {
				fmt.Println(text)
			}
		}
	}
}

// formatFollowedLine stamps raw script output; host log lines already carry
// a level prefix and pass through unchanged
func formatFollowedLine(text string, now time.Time) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if strings.Contains(text, "[x]") || strings.Contains(text, "[DEBUG]") {
		return text
	}
	return fmt.Sprintf("[%s] %s", now.Format("15:04:05"), text)
}
