package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// createManCommand creates the hidden man subcommand
func createManCommand() *cobra.Command {
	manCmd := &cobra.Command{
		Use:    "man",
		Short:  "Generate man pages for qctx",
		Long:   `This command generates the man pages for the qctx CLI.`,
		Hidden: true, // hide this from the public help output
		Args:   cobra.NoArgs,
		// man pages do not need the context store
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			header := &doc.GenManHeader{
				Title:   "QCTX",
				Section: "1", // Section 1 is for executable programs and shell commands
				Source:  "qctx CLI",
			}

			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create man directory: %w", err)
			}

			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return fmt.Errorf("failed to generate man pages: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Man pages successfully generated in %s\n", dir)
			return nil
		},
	}

	manCmd.Flags().String("dir", "./man", "Output directory for the man pages")
	return manCmd
}
