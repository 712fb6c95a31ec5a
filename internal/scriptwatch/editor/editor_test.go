package editor

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"

	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"/s/a.lua"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "/s/a.lua"}},
		{"linux", "xdg-open", []string{"/s/a.lua"}},
		{"freebsd", "xdg-open", []string{"/s/a.lua"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := Command(tt.goos, "/s/a.lua")
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func stubExec(t *testing.T, program string, args ...string) *[]string {
	t.Helper()
	var called []string
	orig := execCommand
	execCommand = func(name string, argv ...string) *exec.Cmd {
		called = append([]string{name}, argv...)
		return exec.Command(program, args...)
	}
	t.Cleanup(func() { execCommand = orig })
	return &called
}

func TestOpenExternally_Success(t *testing.T) {
	called := stubExec(t, "true")

	if err := OpenExternally("/s/a.lua"); err != nil {
		t.Fatalf("OpenExternally() failed: %v", err)
	}
	if len(*called) == 0 || (*called)[len(*called)-1] != "/s/a.lua" {
		t.Errorf("opener called with %v", *called)
	}
}

func TestOpenExternally_Failure(t *testing.T) {
	stubExec(t, "false")

	err := OpenExternally("/s/a.lua")
	if !errors.Is(err, swerrors.ErrEditorFailed) {
		t.Fatalf("OpenExternally() error = %v, want ErrEditorFailed", err)
	}
}

func TestOpenExternally_MissingOpener(t *testing.T) {
	stubExec(t, "/nonexistent/opener-binary")

	if err := OpenExternally("/s/a.lua"); !errors.Is(err, swerrors.ErrEditorFailed) {
		t.Errorf("OpenExternally() error = %v, want ErrEditorFailed", err)
	}
}
