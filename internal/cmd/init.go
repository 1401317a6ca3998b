package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/qerr"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// askOne is the survey prompt used by init; tests replace it
var askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

const (
	locationLocal  = "local"
	locationGlobal = "global"
)

// initAnswers holds the responses collected by the init survey
type initAnswers struct {
	Location string
	Name     string
	Patterns []string
}

// createInitCommand creates the init subcommand
func createInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a configuration with a first context",
		Long: `Initialize a qctx configuration through an interactive process:
• Choose a local (.ctx in this directory) or global (~/.qctx/.ctx) configuration
• Name your first context
• Give it file patterns

The new context becomes the default and the current context for this directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cyan := color.New(color.FgCyan).SprintFunc()
			magenta := color.New(color.FgMagenta).SprintFunc()
			green := color.New(color.FgGreen).SprintFunc()

			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n\n", cyan("Let's set up qctx"))

			answers, err := askInit()
			if err != nil {
				return err
			}

			configPath := filepath.Join(state.workDir, config.FileName)
			if answers.Location == locationGlobal {
				configPath = state.manager.GlobalPath()
			}

			if _, err := os.Stat(configPath); err == nil {
				overwrite := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("%s already exists. Overwrite it?", configPath),
					Default: false,
				}
				if err := askOne(prompt, &overwrite); err != nil {
					return fmt.Errorf("survey error: %w", err)
				}
				if !overwrite {
					fmt.Fprintln(cmd.ErrOrStderr(), "Nothing changed.")
					return nil
				}
			}

			// built-in default contexts stay available underneath the new file
			cfg := &config.Config{
				Contexts: map[string]config.Context{
					answers.Name: {Patterns: answers.Patterns},
				},
				Default: answers.Name,
				Cleanup: state.manager.Config().Cleanup,
			}

			manager := config.NewManager(config.Paths{Home: state.settings.Home, WorkDir: state.workDir}).WithLogger(state.logger)
			manager.SetConfig(cfg)
			if err := manager.SaveTo(configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration created at %s\n", configPath)

			state.current.Set(state.workDir, answers.Name)
			if err := state.current.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized with context: %s\n", answers.Name)

			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s Try: %s\n\n", green("All set!"), magenta("qctx"))
			return nil
		},
	}
}

// askInit runs the init survey and validates the answers
func askInit() (initAnswers, error) {
	var answers initAnswers

	locationPrompt := &survey.Select{
		Message: "Create a global or local configuration?",
		Options: []string{locationLocal, locationGlobal},
		Default: locationLocal,
		Help:    "local writes .ctx in this directory, global writes ~/.qctx/.ctx",
	}
	if err := askOne(locationPrompt, &answers.Location); err != nil {
		return answers, fmt.Errorf("survey error: %w", err)
	}

	namePrompt := &survey.Input{
		Message: "Name for your first context:",
	}
	if err := askOne(namePrompt, &answers.Name); err != nil {
		return answers, fmt.Errorf("survey error: %w", err)
	}
	answers.Name = strings.TrimSpace(answers.Name)
	if err := config.ValidateName(answers.Name); err != nil {
		return answers, err
	}

	var patterns string
	patternsPrompt := &survey.Input{
		Message: "File patterns for this context (comma-separated):",
		Help:    "For example: src/**/*.go, *.md",
	}
	if err := askOne(patternsPrompt, &patterns); err != nil {
		return answers, fmt.Errorf("survey error: %w", err)
	}
	answers.Patterns = splitPatterns(patterns)
	if len(answers.Patterns) == 0 {
		return answers, qerr.New(qerr.NoPatterns, "at least one pattern is required")
	}

	return answers, nil
}

// splitPatterns splits a comma-separated list, dropping blanks
func splitPatterns(input string) []string {
	var patterns []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
