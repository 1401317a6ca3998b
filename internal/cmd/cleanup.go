package cmd

import (
	"fmt"

	"github.com/chriscorrea/qctx/internal/output"

	"github.com/spf13/cobra"
)

// createCleanupCommand creates the cleanup subcommand
func createCleanupCommand() *cobra.Command {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old saved contexts according to the cleanup policy",
		Long: `Apply the cleanup policy (cleanup.maxAge days, cleanup.maxFiles) to the
saved contexts in the qctx home directory. This also runs after every save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			policy := state.manager.Config().Cleanup

			if !policy.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Cleanup is disabled (cleanup.enabled=false).")
				return nil
			}

			store := output.NewStore(state.settings.Home).WithLogger(state.logger)
			report, err := store.Cleanup(policy, dryRun)

			for _, path := range report.Deleted {
				state.logger.Debug("Saved context removed", "path", path, "dry_run", dryRun)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}

	cleanupCmd.Flags().Bool("dry-run", false, "Report what would be deleted without deleting")
	return cleanupCmd
}
