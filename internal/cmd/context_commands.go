package cmd

import (
	"fmt"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/git"
	"github.com/chriscorrea/qctx/internal/qerr"
	"github.com/chriscorrea/qctx/internal/resolve"

	"github.com/spf13/cobra"
)

// gitRunner is replaced in tests
var gitRunner git.Runner = git.ExecRunner{}

// saveConfig validates includes in cfg, then makes it the current configuration and persists it
func saveConfig(cfg *config.Config) error {
	if err := resolve.CheckCycles(cfg); err != nil {
		return err
	}
	state.manager.SetConfig(cfg)
	return state.manager.Save()
}

// updateContext replaces (or creates) a context and makes it current for the working directory
func updateContext(cmd *cobra.Command, name string, def config.Context) error {
	if len(def.Patterns) == 0 && len(def.Include) == 0 {
		return qerr.Newf(qerr.NoPatterns, "context %q needs at least one pattern or include", name)
	}

	cfg := state.manager.Config().Clone()
	if err := cfg.Upsert(name, def); err != nil {
		return err
	}
	for _, included := range def.Include {
		if _, err := cfg.Require(included); err != nil {
			return fmt.Errorf("cannot include %q: %w", included, err)
		}
	}
	if err := saveConfig(cfg); err != nil {
		return err
	}

	state.current.Set(state.workDir, name)
	if err := state.current.Save(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Context '%s' updated and set as current.\n", name)
	return nil
}

// createUpdateCommand creates the update subcommand
func createUpdateCommand() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:     "update <name> [patterns...]",
		Aliases: []string{"up"},
		Short:   "Create or replace a context and switch to it",
		Long: `Create a context, or replace an existing one, from the given patterns and flags.
The context becomes the current context for this directory.

Examples:
  qctx update api 'api/**/*.go' '*.md' --exclude '**/*_test.go'
  qctx update full --include api --include web --description "Everything"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateName(args[0]); err != nil {
				return err
			}

			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			include, _ := cmd.Flags().GetStringSlice("include")

			def := config.Context{
				Patterns: orNil(args[1:]),
				Exclude:  orNil(exclude),
				Include:  orNil(include),
			}
			def.Description, _ = cmd.Flags().GetString("description")
			def.MaxLines, _ = cmd.Flags().GetInt("max-lines")
			def.WarningThreshold, _ = cmd.Flags().GetInt("warning-threshold")

			return updateContext(cmd, args[0], def)
		},
	}

	updateCmd.Flags().StringSlice("exclude", nil, "Exclude glob (repeatable)")
	updateCmd.Flags().StringSlice("include", nil, "Name of another context to include (repeatable)")
	updateCmd.Flags().String("description", "", "Description shown in the assembled header")
	updateCmd.Flags().Int("max-lines", 0, "Line budget for this context (0 = global value)")
	updateCmd.Flags().Int("warning-threshold", 0, "Large-context warning threshold for this context (0 = global value)")

	return updateCmd
}

// createGitChangesCommand creates the git-changes subcommand
func createGitChangesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "git-changes <name>",
		Aliases: []string{"git"},
		Short:   "Create a context from modified and untracked files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := git.New(state.workDir, gitRunner).Changed(cmd.Context())
			if err != nil {
				return err
			}
			return updateFromGit(cmd, args[0], files)
		},
	}
}

// createGitStagedCommand creates the git-staged subcommand
func createGitStagedCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "git-staged <name>",
		Aliases: []string{"staged"},
		Short:   "Create a context from staged files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := git.New(state.workDir, gitRunner).Staged(cmd.Context())
			if err != nil {
				return err
			}
			return updateFromGit(cmd, args[0], files)
		},
	}
}

// orNil keeps unset lists out of the saved config
func orNil(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}

func updateFromGit(cmd *cobra.Command, name string, files []string) error {
	if err := config.ValidateName(name); err != nil {
		return err
	}
	if len(files) == 0 {
		return qerr.New(qerr.NoPatterns, "git reported no files")
	}
	state.logger.Info("Creating context from git", "name", name, "files", len(files))
	return updateContext(cmd, name, config.Context{Patterns: git.ToPatterns(files)})
}

// createSwitchCommand creates the switch subcommand
func createSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "switch <name>",
		Aliases: []string{"s"},
		Short:   "Set the current context for this directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if _, err := state.manager.Config().Require(name); err != nil {
				return err
			}

			state.current.Set(state.workDir, name)
			if err := state.current.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context '%s'.\n", name)
			return nil
		},
	}
}

// createSetDefaultCommand creates the set-default subcommand
func createSetDefaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set-default <name>",
		Aliases: []string{"default"},
		Short:   "Set the context used where no current context was chosen",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.manager.Config().Clone()
			if err := cfg.SetDefault(args[0]); err != nil {
				return err
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Default context set to '%s'.\n", args[0])
			return nil
		},
	}
}

// createDeleteCommand creates the delete subcommand
func createDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"d"},
		Short:   "Delete a context",
		Long: `Delete a context. Other contexts stop including it, and directories
that used it as their current context fall back to the default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg := state.manager.Config().Clone()
			if err := cfg.Delete(name); err != nil {
				return err
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}

			if forgotten := state.current.Forget(name); forgotten > 0 {
				state.logger.Debug("Reset current context", "context", name, "dirs", forgotten)
				if err := state.current.Save(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context '%s' deleted.\n", name)
			return nil
		},
	}
}

// createAddCommand creates the add subcommand
func createAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "add <context> <item>",
		Aliases: []string{"a"},
		Short:   "Add a pattern, exclude or included context to a context",
		Long: `Add an item to a context. The item is classified as:
  !glob                      an exclude glob
  anything with * or /       a pattern
  the name of a context      an include
  anything else              a pattern matching that file

Examples:
  qctx add api 'internal/**/*.go'
  qctx add api '!**/testdata/**'
  qctx add full api`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, item := args[0], args[1]

			cfg := state.manager.Config().Clone()
			kind, added, err := cfg.AddItem(name, item)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(cmd.OutOrStdout(), "'%s' is already in context '%s'.\n", item, name)
				return nil
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added '%s' to context '%s' as %s.\n", item, name, kind)
			return nil
		},
	}
}

// createRemoveCommand creates the remove subcommand
func createRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <context> <item>",
		Aliases: []string{"r"},
		Short:   "Remove an item from a context",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, item := args[0], args[1]

			cfg := state.manager.Config().Clone()
			removed, err := cfg.RemoveItem(name, item)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "'%s' not found in context '%s'.\n", item, name)
				return nil
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s' from context '%s'.\n", item, name)
			return nil
		},
	}
}
