package cmd

import (
	"fmt"
	"strings"

	"github.com/chriscorrea/qctx/internal/config"

	"github.com/spf13/cobra"
)

// createConfigDescribeCommand creates the config describe subcommand
func createConfigDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [key]",
		Short: "Show detailed information about a configuration key",
		Long: `Show detailed information about a configuration key including its type,
description, default and current value. Without a key, lists every key.

The key can be either a canonical path or an alias.

Examples:
  qctx config describe
  qctx config describe max-lines
  qctx config describe cleanup.maxAge`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := config.DefaultConfigSchema()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, path := range schema.ListCanonicalKeys() {
					info, _ := schema.GetFieldInfo(path)
					fmt.Fprintf(out, "%-18s %s\n", path, info.Description)
				}
				return nil
			}

			key := args[0]
			canonicalKey, err := schema.ResolveKey(key)
			if err != nil {
				return err
			}

			fieldInfo, err := schema.GetFieldInfo(canonicalKey)
			if err != nil {
				return err
			}

			currentValue, err := schema.Value(state.manager.Config(), canonicalKey)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Configuration Key: %s\n", canonicalKey)

			// show alias if the input was an alias
			if key != canonicalKey {
				fmt.Fprintf(out, "Alias: %s\n", key)
			}

			fmt.Fprintf(out, "Type: %s\n", fieldInfo.Type.String())
			fmt.Fprintf(out, "Description: %s\n", fieldInfo.Description)
			fmt.Fprintf(out, "Default: %v\n", fieldInfo.Default)
			fmt.Fprintf(out, "Current Value: %s\n", formatConfigValue(currentValue))

			if aliases := schema.AliasesFor(canonicalKey); len(aliases) > 0 {
				fmt.Fprintf(out, "\nAliases: %s\n", strings.Join(aliases, ", "))
			}

			return nil
		},
	}
}
