// Package loader loads, tracks and reloads a single Lua script inside the
// running process. Every load executes the script in a brand new Lua state;
// the previous state is dropped only after the new one succeeded.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PackageEntry is the file name that makes a script the entry point of a
// package; such a script is named after its directory.
const PackageEntry = "init.lua"

// MainIdentity is the identity a script runs under when it is executed as
// the top-level program rather than as a module.
const MainIdentity = "__main__"

// Target identifies the watched script
type Target struct {
	Path          string `json:"path" yaml:"path"`
	ModuleName    string `json:"module_name" yaml:"module_name"`
	RunEntrypoint bool   `json:"run_entrypoint" yaml:"run_entrypoint"`
}

// NewTarget resolves path to an absolute path and derives the module name
func NewTarget(path string, runEntrypoint bool) (Target, error) {
	if strings.TrimSpace(path) == "" {
		return Target{}, fmt.Errorf("script path cannot be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Target{}, fmt.Errorf("failed to resolve script path %s: %w", path, err)
	}

	return Target{
		Path:          absPath,
		ModuleName:    ModuleName(absPath),
		RunEntrypoint: runEntrypoint,
	}, nil
}

// ModuleName derives the logical module name of a script path: the parent
// directory name for a package entry point, the file stem otherwise.
func ModuleName(path string) string {
	dir, file := filepath.Split(filepath.Clean(path))
	if file == PackageEntry {
		return filepath.Base(dir)
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// Identity returns the name the script's namespace runs under
func (t Target) Identity() string {
	if t.RunEntrypoint {
		return t.ModuleName
	}
	return MainIdentity
}
