// Package editor opens the watched script with the desktop's default handler
package editor

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
)

var execCommand = exec.Command

// Command returns the opener and its arguments for goos
func Command(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// OpenExternally opens path in the user's default editor and waits for the
// opener to exit
func OpenExternally(path string) error {
	name, args := Command(runtime.GOOS, path)

	out, err := execCommand(name, args...).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return fmt.Errorf("%w: %s %s: %w: %s", swerrors.ErrEditorFailed, name, path, err, detail)
		}
		return fmt.Errorf("%w: %s %s: %w", swerrors.ErrEditorFailed, name, path, err)
	}
	return nil
}
