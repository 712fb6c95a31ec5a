package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

var (
	stopPidFile    string
	stopSocketPath string
	stopKeepHost   bool
)

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the watcher daemon, or only stop watching",
	Long: `Stop the running watcher daemon. With --keep-host the host keeps running
and keeps serving its socket, but stops polling the script; resume with
'scriptwatch watch resume'.`,
	Example: `  # Stop the daemon
  scriptwatch watch stop

  # Stop watching but keep the host
  scriptwatch watch stop --keep-host

  # Stop with custom PID file
  scriptwatch watch stop --pid-file /custom/path/watcher.pid`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg := hostPaths(stopPidFile, "", stopSocketPath)

		if stopKeepHost {
			client, err := hostClient(cfg.SocketPath)
			if err != nil {
				log.Fatal(err)
			}
			response, err := client.StopWatch()
			if err != nil {
				log.Fatal("Failed to communicate with watcher daemon: ", err)
			}
			if !response.Success {
				log.Fatal("Failed to stop watching: ", response.Error)
			}
			log.Info("✅ %s", response.Message)
			return
		}

		log.Info("🛑 Stopping script watcher daemon...")
		if err := watcher.StopDaemon(cfg.PidFile); err != nil {
			log.Fatal("Failed to stop daemon: ", err)
		}
	},
}

var watchResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume watching on a running host",
	Long:  `Ask a host stopped with --keep-host to load the script again and resume polling.`,
	Example: `  # Resume watching
  scriptwatch watch resume`,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := hostClient(stopSocketPath)
		if err != nil {
			log.Fatal(err)
		}
		response, err := client.StartWatch()
		if err != nil {
			log.Fatal("Failed to communicate with watcher daemon: ", err)
		}
		if !response.Success {
			log.Fatal("Failed to resume watching: ", response.Error)
		}
		log.Info("✅ %s", response.Message)
	},
}

func init() {
	watchCmd.AddCommand(watchStopCmd)
	watchCmd.AddCommand(watchResumeCmd)

	watchStopCmd.Flags().BoolVar(&stopKeepHost, "keep-host", false, "Stop watching but keep the host running")
	watchStopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Custom PID file location")
	watchStopCmd.Flags().StringVar(&stopSocketPath, "socket", "", "Custom socket file location")
	watchResumeCmd.Flags().StringVar(&stopSocketPath, "socket", "", "Custom socket file location")
}
