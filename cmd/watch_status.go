package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

var (
	statusPidFile    string
	statusLogFile    string
	statusSocketPath string
	statusJSON       bool
)

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watcher status",
	Long: `Display the daemon process state and, when the host answers on its socket,
the watched script, its load state and generation.`,
	Example: `  # Show status
  scriptwatch watch status

  # Show status in JSON format
  scriptwatch watch status --json`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := hostPaths(statusPidFile, statusLogFile, statusSocketPath)

		if err := watcher.ShowStatus(cfg.PidFile, cfg.LogFile, statusJSON); err != nil {
			log.Error("Failed to show status: %v", err)
		}
		if statusJSON {
			return
		}

		client := watcher.NewWatcherClient(cfg.SocketPath)
		if !client.IsWatcherRunning() {
			return
		}
		log.Info("")
		if err := client.PrintStatus(); err != nil {
			log.Error("Failed to query host: %v", err)
		}
	},
}

func init() {
	watchCmd.AddCommand(watchStatusCmd)

	watchStatusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Custom PID file location")
	watchStatusCmd.Flags().StringVar(&statusLogFile, "log-file", "", "Custom log file location")
	watchStatusCmd.Flags().StringVar(&statusSocketPath, "socket", "", "Custom socket file location")
	watchStatusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output status in JSON format")
}
