package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

var (
	logsFile       string
	logsSocketPath string
	logsFromDB     bool
	logsLive       bool
	logsLimit      int
	logsInterval   time.Duration
)

var watchLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow and display watcher logs in real-time",
	Long: `Stream the watcher daemon log file in real-time (like tail -f).

With --db the entries come from the host's journal over the socket instead;
add --live to keep polling the journal.`,
	Example: `  # Follow the log file
  scriptwatch watch logs

  # Last 20 journal entries
  scriptwatch watch logs --db --limit 20

  # Stream the journal
  scriptwatch watch logs --db --live --interval 2s`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := hostPaths("", logsFile, logsSocketPath)

		if logsFromDB {
			client, err := hostClient(cfg.SocketPath)
			if err != nil {
				log.Fatal(err)
			}
			if logsLive {
				if err := client.StreamLiveLogs(logsLimit, logsInterval); err != nil {
					log.Fatal("Failed to stream logs: ", err)
				}
				return
			}
			if err := client.PrintLogs(logsLimit); err != nil {
				log.Fatal("Failed to get logs: ", err)
			}
			return
		}

		log.Info("📋 Following script watcher logs: %s", cfg.LogFile)
		log.Info("Press Ctrl+C to stop following logs")
		log.Info("==========================================")

		if err := watcher.FollowLogs(cfg.LogFile); err != nil {
			log.Fatal("Failed to follow logs: ", err)
		}
	},
}

func init() {
	watchCmd.AddCommand(watchLogsCmd)

	watchLogsCmd.Flags().StringVar(&logsFile, "log-file", "", "Custom log file location")
	watchLogsCmd.Flags().StringVar(&logsSocketPath, "socket", "", "Custom socket file location")
	watchLogsCmd.Flags().BoolVar(&logsFromDB, "db", false, "Read the journal through the host socket")
	watchLogsCmd.Flags().BoolVar(&logsLive, "live", false, "Keep polling the journal (with --db)")
	watchLogsCmd.Flags().IntVar(&logsLimit, "limit", 50, "Number of journal entries to show")
	watchLogsCmd.Flags().DurationVar(&logsInterval, "interval", 2*time.Second, "Journal polling interval (with --live)")
}
