package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/dimasma0305/scriptwatch/internal/log"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/config"
)

var (
	initScript       string
	initRunMain      bool
	initAutoStart    bool
	initPollInterval string
	initYes          bool
	initForce        bool
)

// starterScript is written when the chosen script does not exist yet
const starterScript = `-- Edit and save this file; scriptwatch reloads it automatically.
greeting = "hello from " .. _NAME

print(greeting)

function main()
  print("main() called, generation " .. host.generation)
end
`

// initAnswers holds the values init writes to the settings document
type initAnswers struct {
	Script       string `survey:"script"`
	RunMain      bool   `survey:"run_main"`
	AutoStart    bool   `survey:"auto_start"`
	PollInterval string `survey:"poll_interval"`
}

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Create a .scriptwatch.yaml settings document",
	Long: `Create .scriptwatch.yaml in the current directory and the .scriptwatch/
state directory used for the PID file, log file, socket and journal.

You can provide values via flags or be prompted for input interactively.
A starter script is written when the chosen script does not exist.`,
	Example: `  # Initialize with prompts
  scriptwatch init

  # Initialize with flags only
  scriptwatch init --script bot.lua --run-main --yes`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := checkSettingsAbsent(".", initForce); err != nil {
			log.Fatal(err)
		}

		answers := initAnswers{
			Script:       initScript,
			RunMain:      initRunMain,
			AutoStart:    initAutoStart,
			PollInterval: initPollInterval,
		}
		if answers.Script == "" {
			answers.Script = defaultScriptChoice()
		}

		if !initYes {
			if err := survey.Ask(initQuestions(answers), &answers); err != nil {
				log.Fatal("Prompt aborted: ", err)
			}
		}

		settings, err := buildInitSettings(answers)
		if err != nil {
			log.Fatal(err)
		}

		if err := writeProject(".", settings); err != nil {
			log.Fatal(err)
		}

		log.Info("Script watcher initialized successfully!")
		log.InfoH2("Settings: %s", config.SETTINGS_FILE)
		log.InfoH2("Script:   %s", settings.FilePath)
		log.InfoH2("Start with: scriptwatch watch start")
	},
}

// checkSettingsAbsent refuses to overwrite an existing settings document
// unless force is set
func checkSettingsAbsent(dir string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, config.SETTINGS_FILE)); err == nil {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.SETTINGS_FILE)
	}
	return nil
}

// defaultScriptChoice proposes the first Lua script in the working directory
func defaultScriptChoice() string {
	if names, err := getAvailableScripts("."); err == nil && len(names) > 0 {
		return names[0]
	}
	return "main.lua"
}

func initQuestions(defaults initAnswers) []*survey.Question {
	return []*survey.Question{
		{
			Name:     "script",
			Prompt:   &survey.Input{Message: "Script to watch:", Default: defaults.Script},
			Validate: survey.Required,
		},
		{
			Name:   "run_main",
			Prompt: &survey.Confirm{Message: "Call main() after every load?", Default: defaults.RunMain},
		},
		{
			Name:   "auto_start",
			Prompt: &survey.Confirm{Message: "Start watching as soon as 'scriptwatch serve' runs?", Default: defaults.AutoStart},
		},
		{
			Name:     "poll_interval",
			Prompt:   &survey.Input{Message: "Poll interval:", Default: defaults.PollInterval},
			Validate: validateDuration,
		},
	}
}

func validateDuration(ans interface{}) error {
	s, _ := ans.(string)
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("not a duration: %q", s)
	}
	if d <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}

// buildInitSettings turns answers into a validated settings document
func buildInitSettings(answers initAnswers) (*config.Settings, error) {
	settings := config.Default(filepath.ToSlash(answers.Script))
	settings.RunMain = answers.RunMain
	settings.AutoStart = answers.AutoStart
	if answers.PollInterval != "" {
		settings.PollInterval = answers.PollInterval
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// writeProject writes the settings document, the state directory and a
// starter script when the script is missing
func writeProject(dir string, settings *config.Settings) error {
	if err := os.MkdirAll(filepath.Join(dir, config.STATE_DIR), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	//nolint:gosec // G306: ignore file is not secret
	if err := os.WriteFile(filepath.Join(dir, config.STATE_DIR, ".gitignore"), []byte("*\n"), 0644); err != nil {
		return fmt.Errorf("failed to write state .gitignore: %w", err)
	}

	script := settings.FilePath
	if !filepath.IsAbs(script) {
		script = filepath.Join(dir, script)
	}
	if _, err := os.Stat(script); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(script), 0750); err != nil {
			return fmt.Errorf("failed to create script directory: %w", err)
		}
		//nolint:gosec // G306: scripts are meant to be shared
		if err := os.WriteFile(script, []byte(starterScript), 0644); err != nil {
			return fmt.Errorf("failed to write starter script: %w", err)
		}
		log.InfoH3("Created starter script %s", settings.FilePath)
	}

	return settings.Save(filepath.Join(dir, config.SETTINGS_FILE))
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initScript, "script", "", "Script to watch")
	initCmd.Flags().BoolVar(&initRunMain, "run-main", false, "Call main() after every load")
	initCmd.Flags().BoolVar(&initAutoStart, "auto-start", false, "Watch as soon as the host starts")
	initCmd.Flags().StringVar(&initPollInterval, "poll-interval", "500ms", "Poll interval")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept flag values without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing settings document")
}
