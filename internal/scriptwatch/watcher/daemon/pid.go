package daemon

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// ErrBadPIDFile marks a PID file whose content is not a usable process id
var ErrBadPIDFile = errors.New("bad PID file")

// EnsureDirectoriesExist creates the parent directories of the host's state
// files. Empty paths are skipped.
func EnsureDirectoriesExist(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}
	return nil
}

// WritePIDFile records the host's PID. The file is rewritten in place: in
// daemon mode go-daemon already holds a lock on it, so it must keep its
// inode.
func WritePIDFile(pidFile string, pid int) error {
	if err := EnsureDirectoriesExist(pidFile); err != nil {
		return err
	}

	//nolint:gosec // G304: PID file path comes from the host configuration
	f, err := os.OpenFile(pidFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open PID file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", pid); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	log.Debug("Host PID %d recorded in %s", pid, pidFile)
	return nil
}

// ReadPIDFromFile returns the host PID stored in pidFile. A missing file
// yields an error satisfying os.IsNotExist; anything but a positive integer
// on the first line yields ErrBadPIDFile.
func ReadPIDFromFile(pidFile string) (int, error) {
	//nolint:gosec // G304: PID file path comes from the host configuration
	f, err := os.Open(pidFile)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrBadPIDFile, pidFile)
	}

	field := strings.TrimSpace(line)
	if field == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrBadPIDFile, pidFile)
	}
	pid, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a process id", ErrBadPIDFile, field)
	}
	// 0 and negative ids address process groups in kill(2)
	if pid <= 0 {
		return 0, fmt.Errorf("%w: %d is not a process id", ErrBadPIDFile, pid)
	}
	return pid, nil
}
