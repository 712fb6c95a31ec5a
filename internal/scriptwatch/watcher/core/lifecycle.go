package core

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	godaemon "github.com/sevlyar/go-daemon"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/daemon"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/socket"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// shutdownTimeout bounds how long Stop waits for host goroutines
const shutdownTimeout = 10 * time.Second

// Start brings the host up. With startWatching set the script is loaded
// and polled immediately; otherwise the host waits for a start_watch
// command. In daemon mode the parent returns once the child is forked and
// the child runs until it receives SIGINT or SIGTERM.
func (w *Watcher) Start(startWatching bool) error {
	if w.config.DaemonMode {
		log.Info("Starting script watcher in DAEMON mode...")
		return w.startAsDaemon(startWatching)
	}

	log.Info("Starting script watcher in foreground mode...")
	return w.startHost(startWatching)
}

// startAsDaemon starts the host as a daemon process
func (w *Watcher) startAsDaemon(startWatching bool) error {
	if godaemon.WasReborn() {
		pid := os.Getpid()
		log.Info("🚀 Script watcher daemon started (PID: %d)", pid)
		log.Info("📄 PID file: %s", w.config.PidFile)
		log.Info("📝 Log file: %s", w.config.LogFile)

		if err := daemon.WritePIDFile(w.config.PidFile, pid); err != nil {
			log.Error("Failed to write PID file: %v", err)
			return fmt.Errorf("failed to write PID file: %w", err)
		}

		if err := w.startHost(startWatching); err != nil {
			_ = w.Stop()
			return err
		}

		w.WaitForShutdown()
		return nil
	}

	// Failures the child could only report to its log file are caught here
	if startWatching {
		if err := checkScript(w.target.Path); err != nil {
			return err
		}
	}

	if err := daemon.EnsureDirectoriesExist(w.config.PidFile, w.config.LogFile); err != nil {
		return err
	}

	daemonCtx := &godaemon.Context{
		PidFileName: w.config.PidFile,
		PidFilePerm: 0644,
		LogFileName: w.config.LogFile,
		LogFilePerm: 0640,
		WorkDir:     "./",
		Umask:       027,
	}

	child, err := daemonCtx.Reborn()
	if err != nil {
		return fmt.Errorf("failed to fork daemon: %w", err)
	}

	if child != nil {
		log.Info("✅ Script watcher daemon started successfully")
		log.Info("📄 PID: %d (saved to %s)", child.Pid, w.config.PidFile)
		log.Info("📝 Logs: %s", w.config.LogFile)
		return nil
	}

	return fmt.Errorf("unexpected daemon state")
}

// startHost opens the journal and the control socket, then optionally
// starts watching
func (w *Watcher) startHost(startWatching bool) error {
	if err := w.db.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	w.socketServer = socket.NewServer(w.config.SocketPath, w.config.SocketEnabled, socket.NewDefaultCommandHandler(w))
	if err := w.socketServer.Init(); err != nil {
		return fmt.Errorf("failed to initialize socket server: %w", err)
	}

	w.db.LogToDatabase("INFO", "watcher", w.target.ModuleName, "Watcher host started", "", 0)

	if w.config.SocketEnabled {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.socketServer.Run(w.ctx)
		}()
	}

	if startWatching {
		if err := w.StartWatch(w.ctx); err != nil {
			w.db.LogToDatabase("ERROR", "watcher", w.target.ModuleName, "Failed to start watching", err.Error(), 0)
			return err
		}
	} else {
		log.Info("Host ready; waiting for a start_watch command on %s", w.config.SocketPath)
	}

	log.Info("Script watcher host started")
	return nil
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then stops the host
func (w *Watcher) WaitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info("Received %v, shutting down...", sig)
	case <-w.ctx.Done():
	}

	if err := w.Stop(); err != nil {
		log.Error("Error stopping watcher: %v", err)
	}
}

// Stop stops watching and shuts the host down
func (w *Watcher) Stop() error {
	log.Info("Stopping script watcher...")
	w.db.LogToDatabase("INFO", "watcher", w.target.ModuleName, "Watcher host shutdown initiated", "", 0)

	w.StopWatch()
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.InfoH3("All goroutines finished successfully")
	case <-time.After(shutdownTimeout):
		log.Error("Timeout waiting for goroutines to finish")
	}

	if w.socketServer != nil {
		if err := w.socketServer.Close(); err != nil {
			log.Error("Failed to close socket server: %v", err)
		}
	}

	w.mu.Lock()
	w.loader.Close()
	w.mu.Unlock()

	w.db.LogToDatabase("INFO", "watcher", w.target.ModuleName, "Watcher host shutdown completed", "", 0)
	if err := w.db.Close(); err != nil {
		log.Error("Failed to close database: %v", err)
	}

	log.Info("Script watcher stopped")
	return nil
}

// GetDaemonStatus returns the status of the daemon host
func GetDaemonStatus(pidFile string) map[string]interface{} {
	if pidFile == "" {
		pidFile = types.DefaultWatcherConfig.PidFile
	}
	return daemon.GetDaemonStatus(pidFile)
}

// StopDaemon stops the daemon host
func StopDaemon(pidFile string) error {
	if pidFile == "" {
		pidFile = types.DefaultWatcherConfig.PidFile
	}
	return daemon.StopDaemon(pidFile)
}

// ShowStatus displays the daemon status
func ShowStatus(pidFile, logFile string, jsonOutput bool) error {
	if pidFile == "" {
		pidFile = types.DefaultWatcherConfig.PidFile
	}
	if logFile == "" {
		logFile = types.DefaultWatcherConfig.LogFile
	}
	return daemon.ShowStatus(pidFile, logFile, jsonOutput)
}

// FollowLogs follows the daemon log file
func FollowLogs(logFile string) error {
	if logFile == "" {
		logFile = types.DefaultWatcherConfig.LogFile
	}
	return daemon.FollowLogs(logFile)
}
