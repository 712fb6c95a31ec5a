package cmd

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
)

// validScriptNames suggests Lua scripts in the working directory for shell
// completion of the script argument
func validScriptNames(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names, err := getAvailableScripts(".")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveDefault
}

// getAvailableScripts lists *.lua files in dir plus package entry points one
// level down
func getAvailableScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			entryPoint := filepath.Join(entry.Name(), "init.lua")
			if info, err := os.Stat(filepath.Join(dir, entryPoint)); err == nil && info.Mode().IsRegular() {
				names = append(names, entryPoint)
			}
			continue
		}
		if filepath.Ext(entry.Name()) == ".lua" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for scriptwatch.

To load completions:

Bash:

  $ source <(scriptwatch completion bash)

Zsh:

  $ scriptwatch completion zsh > "${fpath[1]}/_scriptwatch"

Fish:

  $ scriptwatch completion fish | source

PowerShell:

  PS> scriptwatch completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			cmd.PrintErrf("Error generating completion: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
