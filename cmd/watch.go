package cmd

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Watch a script and reload it when it changes",
	Long: `Manage the watcher host that re-executes a script whenever the file changes.

On every change the host:
  - Executes the new version in a fresh namespace
  - Captures what the script prints and any error it raises
  - Keeps the previous version live when the new one fails
  - Records the attempt in the journal`,
	Example: `  # Start the watcher daemon
  scriptwatch watch start bot.lua

  # Check watcher status
  scriptwatch watch status

  # Force a reload
  scriptwatch watch reload

  # Stop the watcher daemon
  scriptwatch watch stop`,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
