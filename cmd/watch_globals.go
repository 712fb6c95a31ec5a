package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

var globalsSocketPath string

var watchGlobalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "Show the globals defined by the live script version",
	Long:  `Print the globals the currently loaded version of the script defined, as seen by the host.`,
	Example: `  # Inspect the live namespace
  scriptwatch watch globals`,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := hostClient(globalsSocketPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := client.PrintGlobals(); err != nil {
			log.Fatal("Failed to get globals: ", err)
		}
	},
}

func init() {
	watchCmd.AddCommand(watchGlobalsCmd)

	watchGlobalsCmd.Flags().StringVar(&globalsSocketPath, "socket", "", "Custom socket file location")
}
