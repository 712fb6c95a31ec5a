package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

var reloadSocketPath string

var watchReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Force the host to reload the script",
	Long: `Ask the running host to execute the script again on its next tick, even
when the file has not changed. Several requests before the tick collapse
into one reload.`,
	Example: `  # Force a reload
  scriptwatch watch reload`,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := hostClient(reloadSocketPath)
		if err != nil {
			log.Fatal(err)
		}

		response, err := client.RequestReload()
		if err != nil {
			log.Fatal("Failed to communicate with watcher daemon: ", err)
		}
		if !response.Success {
			log.Fatal("Reload request failed: ", response.Error)
		}
		log.Info("🔁 %s", response.Message)
	},
}

func init() {
	watchCmd.AddCommand(watchReloadCmd)

	watchReloadCmd.Flags().StringVar(&reloadSocketPath, "socket", "", "Custom socket file location")
}
