// Package cmd provides command-line interface commands for scriptwatch
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scriptwatch",
	Short: "Live-reload host for Lua scripts",
	Long: `scriptwatch - run a Lua script inside a long-lived host and re-execute it
whenever the file changes, without restarting the host.

Features:
  • Reload on modification with a fresh namespace per version
  • Captured output and errors per load attempt
  • Failed versions never replace the working one
  • Daemon mode with a Unix control socket
  • SQLite journal of every load attempt`,
	Example: `  # Scaffold .scriptwatch.yaml
  scriptwatch init

  # Watch a script in the background
  scriptwatch watch start bot.lua

  # Force a reload of the current version
  scriptwatch watch reload

  # Run a script once and exit
  scriptwatch run bot.lua`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
}
