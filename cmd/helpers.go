package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/config"
	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

// ResolveSettings loads .scriptwatch.yaml from the working directory. A
// script argument overrides the document's filepath and is resolved against
// the working directory; without a document the argument alone is enough.
func ResolveSettings(args []string) (*config.Settings, error) {
	settings, err := config.Load(".")
	switch {
	case err == nil:
	case errors.Is(err, swerrors.ErrConfigNotFound):
		settings = nil
	default:
		return nil, err
	}

	if len(args) > 0 && args[0] != "" {
		script, absErr := filepath.Abs(args[0])
		if absErr != nil {
			return nil, absErr
		}
		if settings == nil {
			settings = config.Default(script)
		}
		settings.FilePath = script
	}

	if settings == nil {
		return nil, fmt.Errorf("%w: no script given and no %s found", swerrors.ErrMissingRequired, config.SETTINGS_FILE)
	}
	return settings, settings.Validate()
}

// hostPaths applies path overrides from flags on top of the host configuration
func hostPaths(pidFile, logFile, socketPath string) watcher.WatcherConfig {
	cfg := config.HostConfig()
	if pidFile != "" {
		cfg.PidFile = pidFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	return cfg
}

// hostClient returns a client for the host socket, or an error when no host
// answers
func hostClient(socketPath string) (*watcher.WatcherClient, error) {
	path := hostPaths("", "", socketPath).SocketPath
	client := watcher.NewWatcherClient(path)
	if !client.IsWatcherRunning() {
		return nil, fmt.Errorf("%w: no host answers on %s", swerrors.ErrWatcherNotRunning, path)
	}
	return client, nil
}
