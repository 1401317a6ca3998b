package cmd

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/chriscorrea/qctx/internal/config"

	"github.com/spf13/cobra"
)

// createConfigSetCommand creates the config set subcommand
func createConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>=<value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the config file.

The key is a canonical path (e.g. cleanup.maxAge), but aliases are also supported:
  max-lines          → maxLines
  default-context    → default
  cleanup            → cleanup.enabled

Examples:
  qctx config set maxLines=20000
  qctx config set cleanup.maxFiles=50
  qctx config set default-context=api`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// parse the key=value argument
			argument := args[0]
			parts := strings.SplitN(argument, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("invalid format: expected key=value, got %q", argument)
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if key == "" {
				return fmt.Errorf("key cannot be empty")
			}

			schema := config.DefaultConfigSchema()

			// resolve key (handle aliases)
			canonicalKey, err := schema.ResolveKey(key)
			if err != nil {
				return err
			}

			fieldInfo, err := schema.GetFieldInfo(canonicalKey)
			if err != nil {
				return err
			}

			convertedValue, err := convertValueToType(value, fieldInfo.Type)
			if err != nil {
				return fmt.Errorf("failed to convert value %q for key %q: %w", value, canonicalKey, err)
			}

			if err := schema.ValidateValue(canonicalKey, convertedValue); err != nil {
				return fmt.Errorf("validation failed for key %q: %w", canonicalKey, err)
			}

			cfg := state.manager.Config().Clone()
			if canonicalKey == "default" {
				// the default must name an existing context
				if _, err := cfg.Require(convertedValue.(string)); err != nil {
					return err
				}
			}
			if err := schema.Apply(cfg, canonicalKey, convertedValue); err != nil {
				return err
			}
			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			// print confirmation showing both alias and canonical key if different
			if key != canonicalKey {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration updated: %s (%s) = %v\n", key, canonicalKey, convertedValue)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration updated: %s = %v\n", canonicalKey, convertedValue)
			}

			return nil
		},
	}
}

// convertValueToType converts a string value to the specified type
func convertValueToType(value string, targetType reflect.Type) (interface{}, error) {
	// try to unquote the value if it appears to be quoted
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'' || value[0] == '`') {
		if unquoted, err := strconv.Unquote(value); err == nil {
			value = unquoted
		} else if value[0] == '\'' && value[len(value)-1] == '\'' {
			// strconv only accepts single quotes around one rune
			value = value[1 : len(value)-1]
		}
	}

	switch targetType.Kind() {
	case reflect.String:
		return value, nil

	case reflect.Bool:
		return strconv.ParseBool(strings.ToLower(value))

	case reflect.Int:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, err
		}
		return int(intVal), nil

	default:
		return nil, fmt.Errorf("unsupported type: %s", targetType.String())
	}
}
