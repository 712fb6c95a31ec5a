package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher"
)

var serveDaemon bool

var serveCmd = &cobra.Command{
	Use:   "serve [script]",
	Short: "Run the watcher host, watching only when auto_start is set",
	Long: `Run the watcher host with its control socket and journal.

When auto_start is true in .scriptwatch.yaml the script is loaded and
watched as soon as the host is up. Otherwise the host idles until it
receives 'scriptwatch watch resume'.

The host runs in the foreground unless --daemon is given.`,
	Example: `  # Run the host in this terminal
  scriptwatch serve

  # Run the host in the background
  scriptwatch serve --daemon`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: validScriptNames,
	Run: func(_ *cobra.Command, args []string) {
		settings, err := ResolveSettings(args)
		if err != nil {
			log.Fatal("Failed to resolve settings: ", err)
		}

		config, err := settings.WatcherConfig()
		if err != nil {
			log.Fatal("Invalid settings: ", err)
		}
		config.DaemonMode = serveDaemon

		w, err := watcher.NewWatcher(config)
		if err != nil {
			log.Fatal("Failed to create watcher: ", err)
		}

		log.Info("Starting script watcher host (auto_start: %v)...", config.AutoStart)
		if err := w.Start(config.AutoStart); err != nil {
			log.Fatal("Failed to start host: ", err)
		}

		if !config.DaemonMode {
			log.Info("Host running. Press Ctrl+C to stop.")
			w.WaitForShutdown()
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDaemon, "daemon", false, "Run the host as a daemon")
}
