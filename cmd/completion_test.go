package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

// TestGetAvailableScripts tests script discovery for completion
func TestGetAvailableScripts(t *testing.T) {
	tmpDir := t.TempDir()

	//nolint:gosec // G306: Test file permissions are acceptable
	for _, name := range []string{"zeta.lua", "alpha.lua", "notes.txt"} {
		_ = os.WriteFile(filepath.Join(tmpDir, name), []byte("x = 1\n"), 0644)
	}

	// Package with an entry point
	_ = os.MkdirAll(filepath.Join(tmpDir, "bot"), 0750)
	//nolint:gosec // G306: Test file permissions are acceptable
	_ = os.WriteFile(filepath.Join(tmpDir, "bot", "init.lua"), []byte("x = 1\n"), 0644)

	// Directory without an entry point is ignored
	_ = os.MkdirAll(filepath.Join(tmpDir, "assets"), 0750)

	scripts, err := getAvailableScripts(tmpDir)
	if err != nil {
		t.Fatalf("getAvailableScripts failed: %v", err)
	}

	want := []string{"alpha.lua", filepath.Join("bot", "init.lua"), "zeta.lua"}
	if diff := cmp.Diff(want, scripts); diff != "" {
		t.Errorf("getAvailableScripts() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetAvailableScripts_MissingDir(t *testing.T) {
	if _, err := getAvailableScripts(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestValidScriptNames(t *testing.T) {
	dir := chdirTemp(t)
	//nolint:gosec // G306: Test file permissions are acceptable
	_ = os.WriteFile(filepath.Join(dir, "main.lua"), []byte("x = 1\n"), 0644)

	names, directive := validScriptNames(nil, nil, "")
	if directive != cobra.ShellCompDirectiveDefault {
		t.Errorf("directive = %v, want %v", directive, cobra.ShellCompDirectiveDefault)
	}
	if diff := cmp.Diff([]string{"main.lua"}, names); diff != "" {
		t.Errorf("validScriptNames() mismatch (-want +got):\n%s", diff)
	}

	names, directive = validScriptNames(nil, []string{"main.lua"}, "")
	if names != nil || directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("second argument should not complete, got %v %v", names, directive)
	}
}
