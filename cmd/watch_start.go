package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

var (
	watchForeground   bool
	watchRunMain      bool
	watchPollInterval time.Duration
	watchRetryFailed  bool
	watchNoNotify     bool
	watchQuiet        bool
	watchPidFile      string
	watchLogFile      string
)

var watchStartCmd = &cobra.Command{
	Use:   "start [script]",
	Short: "Start the watcher daemon",
	Long: `Start watching a script. The script is loaded once immediately; the host
refuses to start when the file is missing or the first load fails.

The script comes from the argument or the filepath key of .scriptwatch.yaml.
Flags override the settings document.

The watcher runs as a daemon by default. Use --foreground to run in the current terminal.`,
	Example: `  # Start as daemon using .scriptwatch.yaml
  scriptwatch watch start

  # Start in foreground
  scriptwatch watch start bot.lua --foreground

  # Call main() after every load
  scriptwatch watch start bot.lua --run-main

  # Poll every two seconds without fsnotify
  scriptwatch watch start bot.lua --poll-interval 2s --no-notify`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: validScriptNames,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := ResolveSettings(args)
		if err != nil {
			log.Fatal("Failed to resolve settings: ", err)
		}

		config, err := settings.WatcherConfig()
		if err != nil {
			log.Fatal("Invalid settings: ", err)
		}

		flags := cmd.Flags()
		if flags.Changed("run-main") {
			config.RunEntrypoint = watchRunMain
		}
		if flags.Changed("poll-interval") {
			config.PollInterval = watchPollInterval
		}
		if flags.Changed("retry-failed") {
			config.RetryFailed = watchRetryFailed
		}
		if watchNoNotify {
			config.Notify = false
		}
		if watchQuiet {
			config.ShowInConsole = false
		}
		if watchPidFile != "" {
			config.PidFile = watchPidFile
		}
		if watchLogFile != "" {
			config.LogFile = watchLogFile
		}
		config.DaemonMode = !watchForeground

		w, err := watcher.NewWatcher(config)
		if err != nil {
			log.Fatal("Failed to create watcher: ", err)
		}

		if err := w.Start(true); err != nil {
			log.Fatal("Failed to start watcher: ", err)
		}

		if !config.DaemonMode {
			log.Info("Script watcher running in foreground. Press Ctrl+C to stop.")
			w.WaitForShutdown()
		}
	},
}

func init() {
	watchCmd.AddCommand(watchStartCmd)

	watchStartCmd.Flags().BoolVarP(&watchForeground, "foreground", "f", false, "Run in foreground instead of daemon mode")
	watchStartCmd.Flags().BoolVar(&watchRunMain, "run-main", false, "Call the script's main() after each load")
	watchStartCmd.Flags().DurationVar(&watchPollInterval, "poll-interval", watcher.DefaultWatcherConfig.PollInterval, "Polling interval for file changes")
	watchStartCmd.Flags().BoolVar(&watchRetryFailed, "retry-failed", false, "Retry a version that failed to load on every tick")
	watchStartCmd.Flags().BoolVar(&watchNoNotify, "no-notify", false, "Disable fsnotify change notifications and rely on polling")
	watchStartCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Do not echo captured script output to the console")
	watchStartCmd.Flags().StringVar(&watchPidFile, "pid-file", "", "Custom PID file location (default: .scriptwatch/watcher.pid)")
	watchStartCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Custom log file location (default: .scriptwatch/watcher.log)")
}
