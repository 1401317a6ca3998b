package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chriscorrea/qctx/internal/app"
	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	dirState "github.com/chriscorrea/qctx/internal/state"
	"github.com/chriscorrea/qctx/internal/verbose"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// current version (hardcoded for now, could be replaced with build flags)
const version = "0.1.0"

// rootCmdState holds everything a command needs for one invocation
type rootCmdState struct {
	settings config.Settings
	manager  *config.Manager
	current  *dirState.State // per-directory current context
	workDir  string
	logger   *slog.Logger
}

// state is the global state instance for the root command
var state = &rootCmdState{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "qctx [context]",
	Version: version,
	Short:   "Gather project files into a single context for LLM prompts",
	Long: `qctx assembles the files selected by a named context into one document,
copies it to the clipboard and keeps a timestamped copy in ~/.qctx.

Contexts are sets of glob patterns, exclude globs and other contexts to include.
They live in ~/.qctx/.ctx and in a .ctx file in your project (or any parent directory).

Run without arguments to use the current context for this directory.`,
	SilenceUsage:  true, // Don't show usage after errors
	SilenceErrors: true, // errors are printed as "Error [CODE]: ..." by Execute

	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		return initState(settings, workDir, logger.New(settings.Debug))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runContext(cmd, name)
	},
}

// loadSettings reads settings from the root's persistent flags and the environment.
// Subcommand flags that share a name (update --max-lines) are per-context values, not settings.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	v := config.NewSettingsViper()
	if err := config.BindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return config.Settings{}, err
	}

	settings, err := config.LoadSettings(v)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// initState loads the context store and directory state for workDir
func initState(settings config.Settings, workDir string, l *slog.Logger) error {
	manager := config.NewManager(config.Paths{Home: settings.Home, WorkDir: workDir}).WithLogger(l)
	if err := manager.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	current, err := dirState.Load(settings.Home, l)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	state = &rootCmdState{
		settings: settings,
		manager:  manager,
		current:  current,
		workDir:  workDir,
		logger:   l,
	}
	return nil
}

// Execute runs the root command and prints any error as "Error [CODE]: message".
// this is called by main.main() and only needs to happen once
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), app.ErrorLine(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String(config.KeyHome, "", "Directory for the global config, state and saved contexts (default ~/.qctx)")
	rootCmd.PersistentFlags().BoolP(config.KeyDebug, "D", false, "Enable detailed debug logging")
	rootCmd.PersistentFlags().Bool(config.KeyNoClipboard, false, "Do not copy the assembled context to the clipboard")
	rootCmd.PersistentFlags().Bool(config.KeyNoSave, false, "Do not save a timestamped copy of the assembled context")
	rootCmd.PersistentFlags().Int(config.KeyMaxLines, 0, "Override the line budget of every context (0 = use config)")
	rootCmd.PersistentFlags().Bool(config.KeySkipUnreadable, false, "Skip directories that cannot be listed instead of failing")
	rootCmd.PersistentFlags().Bool(config.KeyStrict, false, "Fail when a matched file cannot be read")

	rootCmd.Flags().BoolP("verbose", "v", false, "Display run parameters in a formatted table")

	rootCmd.AddCommand(createInitCommand())
	rootCmd.AddCommand(createUpdateCommand())
	rootCmd.AddCommand(createSwitchCommand())
	rootCmd.AddCommand(createListCommand())
	rootCmd.AddCommand(createShowCommand())
	rootCmd.AddCommand(createGitChangesCommand())
	rootCmd.AddCommand(createGitStagedCommand())
	rootCmd.AddCommand(createSetDefaultCommand())
	rootCmd.AddCommand(createDeleteCommand())
	rootCmd.AddCommand(createAddCommand())
	rootCmd.AddCommand(createRemoveCommand())
	rootCmd.AddCommand(createCleanupCommand())
	rootCmd.AddCommand(createConfigCommand())
	rootCmd.AddCommand(createManCommand())
	rootCmd.AddCommand(createVersionCommand())
}

// currentContextName returns name, or the current context for the working directory
func currentContextName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	return state.current.Current(state.workDir, state.manager.Config())
}

// runContext assembles a context and reports what happened to it
func runContext(cmd *cobra.Command, name string) error {
	if state.manager == nil {
		return fmt.Errorf("config manager not initialized")
	}

	name, err := currentContextName(name)
	if err != nil {
		return err
	}

	appInstance := app.NewApp(state.manager.Config(), state.settings, state.workDir, state.logger)
	out, err := appInstance.Run(cmd.Context(), name)
	if err != nil {
		return err
	}

	showParams, _ := cmd.Flags().GetBool("verbose")
	if showParams {
		outputCfg := verbose.DefaultOutputConfig(cmd.ErrOrStderr())
		outputCfg.EnableColors = !color.NoColor
		verbose.PrintRunParameters(verbose.RunParameters{
			Context:          name,
			Files:            len(out.Match.Files),
			MaxLines:         out.Match.Limits.MaxLines,
			WarningThreshold: out.Match.Limits.WarningThreshold,
			Patterns:         len(out.Match.Set.Patterns),
			Exclude:          len(out.Match.Set.Exclude),
		}, outputCfg)
	}

	stdout := cmd.OutOrStdout()
	if out.Copied {
		fmt.Fprintf(stdout, "Context '%s' with %d files copied to clipboard.\n", name, len(out.Document.Result.Included))
	}
	if out.SavedPath != "" {
		fmt.Fprintf(stdout, "Context saved to: %s\n", out.SavedPath)
	}
	if out.Cleanup != nil && len(out.Cleanup.Deleted) > 0 {
		fmt.Fprintf(stdout, "Cleanup: %s\n", out.Cleanup)
	}
	fmt.Fprintln(stdout, out.Document.Summary())

	for _, warning := range out.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), warning)
	}
	return nil
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the current version of qctx.",
		// skips loading the context store
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "qctx version ", version, "\n")
			return nil
		},
	}
}
