package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/editor"
)

var editCmd = &cobra.Command{
	Use:   "edit [script]",
	Short: "Open the watched script in the default editor",
	Long: `Open the script with the desktop's default handler: open on macOS,
rundll32 url.dll,FileProtocolHandler on Windows and xdg-open elsewhere.`,
	Example: `  # Open the script from .scriptwatch.yaml
  scriptwatch edit`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: validScriptNames,
	Run: func(_ *cobra.Command, args []string) {
		settings, err := ResolveSettings(args)
		if err != nil {
			log.Fatal("Failed to resolve settings: ", err)
		}

		path := settings.Resolve(settings.FilePath)
		if err := editor.OpenExternally(path); err != nil {
			log.Fatal(err)
		}
		log.Info("📝 Opened %s", path)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
