//nolint:revive // Settings field names match the YAML document
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

const (
	SETTINGS_FILE = ".scriptwatch.yaml"
	STATE_DIR     = ".scriptwatch"
)

// Settings is the .scriptwatch.yaml document
type Settings struct {
	FilePath      string `yaml:"filepath"`
	RunMain       bool   `yaml:"run_main"`
	ShowInConsole *bool  `yaml:"show_in_console,omitempty"`
	AutoStart     bool   `yaml:"auto_start"`
	PollInterval  string `yaml:"poll_interval,omitempty"`
	RetryFailed   bool   `yaml:"retry_failed,omitempty"`
	Notify        *bool  `yaml:"notify,omitempty"`
	PidFile       string `yaml:"pid_file,omitempty"`
	LogFile       string `yaml:"log_file,omitempty"`
	SocketPath    string `yaml:"socket_path,omitempty"`
	DatabasePath  string `yaml:"database_path,omitempty"`
	Journal       *bool  `yaml:"journal,omitempty"`

	// dir is where the document was read from; relative paths resolve
	// against it
	dir string
}

// Default returns settings for script with every optional key at its default
func Default(script string) *Settings {
	return &Settings{
		FilePath:     script,
		PollInterval: types.DefaultWatcherConfig.PollInterval.String(),
	}
}

// Load reads SETTINGS_FILE from dir
func Load(dir string) (*Settings, error) {
	return LoadFile(filepath.Join(dir, SETTINGS_FILE))
}

// LoadFile reads and validates a settings document
func LoadFile(path string) (*Settings, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", swerrors.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var s Settings
	if err := ParseYamlFromFile(path, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", swerrors.ErrInvalidConfig, err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	s.dir = abs

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required keys and value formats
func (s *Settings) Validate() error {
	if s.FilePath == "" {
		return fmt.Errorf("%w: filepath", swerrors.ErrMissingRequired)
	}
	if _, err := s.pollInterval(); err != nil {
		return err
	}
	return nil
}

func (s *Settings) pollInterval() (time.Duration, error) {
	if s.PollInterval == "" {
		return types.DefaultWatcherConfig.PollInterval, nil
	}
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("%w: poll_interval %q: %w", swerrors.ErrInvalidConfig, s.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: poll_interval must be positive, got %s", swerrors.ErrInvalidConfig, s.PollInterval)
	}
	return d, nil
}

// Dir is the directory relative paths resolve against
func (s *Settings) Dir() string {
	if s.dir != "" {
		return s.dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Resolve makes path absolute relative to the settings directory
func (s *Settings) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Dir(), path)
}

// WatcherConfig converts the settings into the host configuration
func (s *Settings) WatcherConfig() (types.WatcherConfig, error) {
	if err := s.Validate(); err != nil {
		return types.WatcherConfig{}, err
	}
	interval, _ := s.pollInterval()

	defaults := types.DefaultWatcherConfig
	cfg := types.WatcherConfig{
		ScriptPath:      s.Resolve(s.FilePath),
		RunEntrypoint:   s.RunMain,
		ShowInConsole:   boolOr(s.ShowInConsole, defaults.ShowInConsole),
		AutoStart:       s.AutoStart,
		PollInterval:    interval,
		RetryFailed:     s.RetryFailed,
		Notify:          boolOr(s.Notify, defaults.Notify),
		DaemonMode:      defaults.DaemonMode,
		PidFile:         s.Resolve(stringOr(s.PidFile, defaults.PidFile)),
		LogFile:         s.Resolve(stringOr(s.LogFile, defaults.LogFile)),
		DatabaseEnabled: boolOr(s.Journal, defaults.DatabaseEnabled),
		DatabasePath:    s.Resolve(stringOr(s.DatabasePath, defaults.DatabasePath)),
		SocketEnabled:   defaults.SocketEnabled,
		SocketPath:      s.Resolve(stringOr(s.SocketPath, defaults.SocketPath)),
	}
	return cfg, nil
}

// Save writes the settings document to path
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // settings are not secret
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// HostConfig returns the host configuration for the settings in the working
// directory, or defaults rooted there when no settings document exists
func HostConfig() types.WatcherConfig {
	s, err := Load(".")
	if err == nil {
		if cfg, cfgErr := s.WatcherConfig(); cfgErr == nil {
			return cfg
		}
	}
	fallback := &Settings{}
	defaults := types.DefaultWatcherConfig
	defaults.PidFile = fallback.Resolve(defaults.PidFile)
	defaults.LogFile = fallback.Resolve(defaults.LogFile)
	defaults.DatabasePath = fallback.Resolve(defaults.DatabasePath)
	defaults.SocketPath = fallback.Resolve(defaults.SocketPath)
	return defaults
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
