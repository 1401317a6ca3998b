package cmd

import (
	"errors"
	"fmt"

	"github.com/chriscorrea/qctx/internal/app"
	"github.com/chriscorrea/qctx/internal/qerr"
	"github.com/chriscorrea/qctx/internal/verbose"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// outputConfig returns the verbose output config for cmd's stdout; colors follow the terminal
func outputConfig(cmd *cobra.Command) *verbose.OutputConfig {
	outputCfg := verbose.DefaultOutputConfig(cmd.OutOrStdout())
	outputCfg.EnableColors = !color.NoColor
	return outputCfg
}

// createListCommand creates the list subcommand
func createListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List available contexts",
		Long:    "List every context from the global and local config. The current context for this directory is marked with '*'.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.manager.Config()

			current, err := state.current.Current(state.workDir, cfg)
			if err != nil && !errors.Is(err, qerr.NoContext) {
				return err
			}

			if showDetails, _ := cmd.Flags().GetBool("verbose"); showDetails {
				verbose.PrintContexts(cfg, current, outputConfig(cmd))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Available contexts:")
			for _, name := range cfg.Names() {
				marker := "  "
				if name == current {
					marker = "* "
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
			}
			return nil
		},
	}

	listCmd.Flags().BoolP("verbose", "v", false, "Show pattern counts, includes and descriptions")
	return listCmd
}

// createShowCommand creates the show subcommand
func createShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [context]",
		Short: "Show what a context resolves to without assembling it",
		Long: `Resolve a context (the current one by default) and list its flattened
patterns, exclude globs, effective limits and the files it matches.
Nothing is read, copied or saved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			name, err := currentContextName(name)
			if err != nil {
				return err
			}

			appInstance := app.NewApp(state.manager.Config(), state.settings, state.workDir, state.logger)
			m, err := appInstance.Match(cmd.Context(), name)
			if err != nil {
				return err
			}

			verbose.PrintResolution(name, m.Set, m.Files, outputConfig(cmd))
			fmt.Fprintf(cmd.OutOrStdout(), "Max lines: %d, warning threshold: %d\n", m.Limits.MaxLines, m.Limits.WarningThreshold)
			return nil
		},
	}
}
