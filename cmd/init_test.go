package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/config"
	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
)

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		in      interface{}
		wantErr bool
	}{
		{"500ms", false},
		{"2s", false},
		{"0s", true},
		{"-1s", true},
		{"soon", true},
		{42, true},
	}
	for _, tt := range tests {
		err := validateDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateDuration(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestBuildInitSettings(t *testing.T) {
	s, err := buildInitSettings(initAnswers{Script: "bot.lua", RunMain: true, AutoStart: true, PollInterval: "1s"})
	if err != nil {
		t.Fatalf("buildInitSettings() error = %v", err)
	}
	if s.FilePath != "bot.lua" || !s.RunMain || !s.AutoStart || s.PollInterval != "1s" {
		t.Errorf("unexpected settings: %+v", s)
	}

	if _, err := buildInitSettings(initAnswers{}); !errors.Is(err, swerrors.ErrMissingRequired) {
		t.Errorf("empty script error = %v, want ErrMissingRequired", err)
	}
}

func TestWriteProject(t *testing.T) {
	dir := t.TempDir()
	settings := config.Default("scripts/main.lua")
	settings.RunMain = true

	if err := writeProject(dir, settings); err != nil {
		t.Fatalf("writeProject() error = %v", err)
	}

	if info, err := os.Stat(filepath.Join(dir, config.STATE_DIR)); err != nil || !info.IsDir() {
		t.Errorf("state directory not created: %v", err)
	}

	//nolint:gosec // G304: Test reads its own temp file
	script, err := os.ReadFile(filepath.Join(dir, "scripts", "main.lua"))
	if err != nil {
		t.Fatalf("starter script not written: %v", err)
	}
	if !strings.Contains(string(script), "function main()") {
		t.Error("starter script should define main()")
	}

	loaded, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if loaded.FilePath != "scripts/main.lua" || !loaded.RunMain {
		t.Errorf("unexpected saved settings: %+v", loaded)
	}
}

func TestWriteProject_KeepsExistingScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.lua")
	//nolint:gosec // G306: Test file permissions are acceptable
	if err := os.WriteFile(path, []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := writeProject(dir, config.Default("bot.lua")); err != nil {
		t.Fatalf("writeProject() error = %v", err)
	}

	//nolint:gosec // G304: Test reads its own temp file
	data, _ := os.ReadFile(path)
	if string(data) != "x = 1\n" {
		t.Errorf("existing script was overwritten: %q", data)
	}
}

func TestCheckSettingsAbsent(t *testing.T) {
	dir := t.TempDir()
	if err := checkSettingsAbsent(dir, false); err != nil {
		t.Fatalf("checkSettingsAbsent() on empty dir error = %v", err)
	}

	if err := config.Default("main.lua").Save(filepath.Join(dir, config.SETTINGS_FILE)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	err := checkSettingsAbsent(dir, false)
	if err == nil || !strings.Contains(err.Error(), config.SETTINGS_FILE+" already exists") {
		t.Errorf("checkSettingsAbsent() error = %v, want already exists", err)
	}
	if err := checkSettingsAbsent(dir, true); err != nil {
		t.Errorf("checkSettingsAbsent() with force error = %v", err)
	}
}
