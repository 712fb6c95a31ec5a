package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetDaemonStatus(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("no pid file", func(t *testing.T) {
		status := GetDaemonStatus(filepath.Join(tmpDir, "missing.pid"))
		if status["status"] != StatusStopped {
			t.Errorf("status = %v, want %s", status["status"], StatusStopped)
		}
		if status["daemon"] != false {
			t.Error("daemon should be false")
		}
	})

	t.Run("running process", func(t *testing.T) {
		pidFile := filepath.Join(tmpDir, "self.pid")
		if err := WritePIDFile(pidFile, os.Getpid()); err != nil {
			t.Fatal(err)
		}
		status := GetDaemonStatus(pidFile)
		if status["status"] != StatusRunning {
			t.Errorf("status = %v, want %s", status["status"], StatusRunning)
		}
		if status["pid"] != os.Getpid() {
			t.Errorf("pid = %v, want %d", status["pid"], os.Getpid())
		}
	})

	t.Run("stale pid file", func(t *testing.T) {
		pidFile := filepath.Join(tmpDir, "stale.pid")
		// PIDs are bounded well below this on every supported kernel
		if err := WritePIDFile(pidFile, 1<<30); err != nil {
			t.Fatal(err)
		}
		status := GetDaemonStatus(pidFile)
		if status["status"] != StatusDead {
			t.Errorf("status = %v, want %s", status["status"], StatusDead)
		}
		if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
			t.Error("stale PID file should be removed")
		}
	})

	t.Run("garbage pid file", func(t *testing.T) {
		pidFile := filepath.Join(tmpDir, "garbage.pid")
		if err := os.WriteFile(pidFile, []byte("nope"), 0600); err != nil {
			t.Fatal(err)
		}
		status := GetDaemonStatus(pidFile)
		if status["status"] != StatusError {
			t.Errorf("status = %v, want %s", status["status"], StatusError)
		}
	})
}

func TestStopDaemon_NotRunning(t *testing.T) {
	err := StopDaemon(filepath.Join(t.TempDir(), "missing.pid"))
	if err == nil {
		t.Fatal("StopDaemon() should fail without a PID file")
	}
}

func TestStatusJSON(t *testing.T) {
	running := map[string]interface{}{
		"daemon":  true,
		"status":  StatusRunning,
		"pid":     42,
		"message": "Daemon is running",
	}
	want := map[string]interface{}{
		"daemon_running": true,
		"status":         StatusRunning,
		"pid_file":       "w.pid",
		"log_file":       "w.log",
		"pid":            42,
		"message":        "Daemon is running",
	}
	if diff := cmp.Diff(want, StatusJSON(running, "w.pid", "w.log")); diff != "" {
		t.Errorf("StatusJSON() mismatch (-want +got):\n%s", diff)
	}

	stopped := map[string]interface{}{"daemon": false, "status": StatusStopped, "pid": 7}
	got := StatusJSON(stopped, "w.pid", "w.log")
	if _, ok := got["pid"]; ok {
		t.Error("pid must be omitted when the daemon is not running")
	}
	if got["daemon_running"] != false {
		t.Error("daemon_running should be false")
	}
}

func TestLastLines(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "watcher.log")
	content := "one\n\ntwo\nthree\n   \nfour\nfive\nsix\n"
	if err := os.WriteFile(logFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		n    int
		want []string
	}{
		{5, []string{"two", "three", "four", "five", "six"}},
		{2, []string{"five", "six"}},
		{10, []string{"one", "two", "three", "four", "five", "six"}},
	}
	for _, tt := range tests {
		got, err := LastLines(logFile, tt.n)
		if err != nil {
			t.Fatalf("LastLines(%d) failed: %v", tt.n, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("LastLines(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}

	if _, err := LastLines(filepath.Join(t.TempDir(), "missing.log"), 5); err == nil {
		t.Error("LastLines() should fail for a missing file")
	}
}

func TestFormatFollowedLine(t *testing.T) {
	now := time.Date(2024, 1, 2, 13, 14, 15, 0, time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"[x] Reloaded script", "[x] Reloaded script"},
		{"[DEBUG] tick", "[DEBUG] tick"},
		{"hello from lua", "[13:14:15] hello from lua"},
	}
	for _, tt := range tests {
		if got := formatFollowedLine(tt.in, now); got != tt.want {
			t.Errorf("formatFollowedLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
