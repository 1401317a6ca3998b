package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/qctx/internal/config"

	"github.com/spf13/cobra"
)

// createConfigCommand creates the config command and its subcommands
func createConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage qctx configuration",
		Long: `Manage qctx configuration settings. Without a subcommand, shows which
files the configuration was loaded from and where changes are saved.

Examples:
  qctx config                       # Show configuration status
  qctx config list                  # Show settings and their values
  qctx config set max-lines=20000   # Set a configuration value
  qctx config describe cleanup.maxAge`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			manager := state.manager

			fmt.Fprintf(out, "Home: %s\n", state.settings.Home)
			fmt.Fprintf(out, "Global config: %s\n", manager.GlobalPath())
			if local := manager.LocalPath(); local != "" {
				fmt.Fprintf(out, "Local config: %s\n", local)
			} else {
				fmt.Fprintf(out, "Local config: (none, searched from %s)\n", state.workDir)
			}
			fmt.Fprintf(out, "Changes saved to: %s\n", manager.SavePath())

			sources := manager.Sources()
			if len(sources) == 0 {
				sources = []string{"built-in defaults"}
			}
			fmt.Fprintf(out, "Loaded from: %s\n", strings.Join(sources, ", "))
			fmt.Fprintf(out, "Contexts: %d\n", len(manager.Config().Contexts))
			return nil
		},
	}

	configCmd.AddCommand(createConfigListCommand())
	configCmd.AddCommand(createConfigSetCommand())
	configCmd.AddCommand(createConfigDescribeCommand())
	return configCmd
}

// createConfigListCommand creates the config list subcommand
func createConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Long:  "List every settable configuration key with its current value and aliases.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := config.DefaultConfigSchema()
			cfg := state.manager.Config()
			outputCfg := outputConfig(cmd)

			header, key, value := fmt.Sprint, fmt.Sprint, fmt.Sprint
			if outputCfg.EnableColors {
				header = outputCfg.HeaderColor.SprintFunc()
				key = outputCfg.KeyColor.SprintFunc()
				value = outputCfg.ValueColor.SprintFunc()
			}

			w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\n", header("KEY"), header("VALUE"), header("ALIASES"))
			for _, path := range schema.ListCanonicalKeys() {
				current, err := schema.Value(cfg, path)
				if err != nil {
					return err
				}
				aliases := strings.Join(schema.AliasesFor(path), ", ")
				fmt.Fprintf(w, "%s\t%s\t%s\n", key(path), value(formatConfigValue(current)), aliases)
			}
			return w.Flush()
		},
	}
}

// formatConfigValue renders a config value for display
func formatConfigValue(value interface{}) string {
	if s, ok := value.(string); ok && s == "" {
		return "<not set>"
	}
	return fmt.Sprintf("%v", value)
}
