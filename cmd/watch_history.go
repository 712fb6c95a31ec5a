package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

var (
	historyStatus     string
	historyLimit      int
	historySocketPath string
)

var watchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded load attempts",
	Long: `List the load attempts recorded in the host's journal, newest first, with
their trigger, outcome, generation and captured error text.`,
	Example: `  # All recent attempts
  scriptwatch watch history

  # Only failures
  scriptwatch watch history --status failed`,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := hostClient(historySocketPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := client.PrintLoads(historyStatus, historyLimit); err != nil {
			log.Fatal("Failed to get load history: ", err)
		}
	},
}

func init() {
	watchCmd.AddCommand(watchHistoryCmd)

	watchHistoryCmd.Flags().StringVar(&historyStatus, "status", "", "Only show attempts with this outcome (loaded, failed)")
	watchHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of attempts to show")
	watchHistoryCmd.Flags().StringVar(&historySocketPath, "socket", "", "Custom socket file location")
}
