package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/capture"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/loader"
)

var runMain bool

var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Load a script once and print what it produced",
	Long: `Execute the script exactly as the watcher would on a reload, print the
captured output and exit. The exit code is 1 when the load fails.`,
	Example: `  # Run once
  scriptwatch run bot.lua

  # Run once and call main()
  scriptwatch run bot.lua --run-main`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: validScriptNames,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := ResolveSettings(args)
		if err != nil {
			log.Fatal("Failed to resolve settings: ", err)
		}

		entrypoint := settings.RunMain
		if cmd.Flags().Changed("run-main") {
			entrypoint = runMain
		}

		target, err := loader.NewTarget(settings.Resolve(settings.FilePath), entrypoint)
		if err != nil {
			log.Fatal(err)
		}

		l := loader.New(target)

		var outcome loader.Outcome
		out, err := capture.Run(func() error {
			outcome = l.Load()
			return nil
		})
		l.Close()
		if err != nil {
			log.Fatal("Failed to capture output: ", err)
		}

		log.ScriptOutput(out.Stdout)
		if outcome != loader.Loaded {
			log.ScriptError(target.Path, out.Stderr)
			os.Exit(1)
		}
		log.ScriptStderr(out.Stderr)
		log.Debug("Loaded %s as %s", target.Path, target.Identity())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runMain, "run-main", false, "Call the script's main() after loading")
}
