package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ConfigFieldInfo contains metadata about a configuration field
type ConfigFieldInfo struct {
	Type        reflect.Type
	Description string
	Default     interface{}
	Validation  func(interface{}) error

	get func(*Config) interface{}
	set func(*Config, interface{})
}

// ConfigSchema holds the registry of settable configuration paths and aliases
type ConfigSchema struct {
	ValidPaths map[string]ConfigFieldInfo
	Aliases    map[string]string
}

// validateIntRange returns a validation function for int values within a range
func validateIntRange(min, max int) func(interface{}) error {
	return func(value interface{}) error {
		if v, ok := value.(int); ok {
			if v < min || v > max {
				return fmt.Errorf("value must be between %d and %d", min, max)
			}
			return nil
		}
		return fmt.Errorf("expected int, got %T", value)
	}
}

// DefaultConfigSchema returns the schema for the scalar settings of the context store
func DefaultConfigSchema() *ConfigSchema {
	return &ConfigSchema{
		ValidPaths: map[string]ConfigFieldInfo{
			"maxLines": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Line budget for an assembled context",
				Default:     DefaultMaxLines,
				Validation:  validateIntRange(1, 10000000),
				get:         func(c *Config) interface{} { return c.MaxLines },
				set:         func(c *Config, v interface{}) { c.MaxLines = v.(int) },
			},
			"warningThreshold": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Line count above which a large-context warning is shown",
				Default:     DefaultWarningThreshold,
				Validation:  validateIntRange(1, 10000000),
				get:         func(c *Config) interface{} { return c.WarningThreshold },
				set:         func(c *Config, v interface{}) { c.WarningThreshold = v.(int) },
			},
			"default": {
				Type:        reflect.TypeOf(""),
				Description: "Context used when the directory has no current context",
				Default:     "react",
				get:         func(c *Config) interface{} { return c.Default },
				set:         func(c *Config, v interface{}) { c.Default = v.(string) },
			},
			"cleanup.enabled": {
				Type:        reflect.TypeOf(bool(false)),
				Description: "Delete old saved output files after each run",
				Default:     true,
				get:         func(c *Config) interface{} { return c.Cleanup.Enabled },
				set:         func(c *Config, v interface{}) { c.Cleanup.Enabled = v.(bool) },
			},
			"cleanup.maxAge": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Age in days after which saved output files are deleted",
				Default:     7,
				Validation:  validateIntRange(0, 3650),
				get:         func(c *Config) interface{} { return c.Cleanup.MaxAge },
				set:         func(c *Config, v interface{}) { c.Cleanup.MaxAge = v.(int) },
			},
			"cleanup.maxFiles": {
				Type:        reflect.TypeOf(int(0)),
				Description: "Number of saved output files to keep",
				Default:     100,
				Validation:  validateIntRange(0, 100000),
				get:         func(c *Config) interface{} { return c.Cleanup.MaxFiles },
				set:         func(c *Config, v interface{}) { c.Cleanup.MaxFiles = v.(int) },
			},
		},

		Aliases: map[string]string{
			"max-lines":         "maxLines",
			"warning-threshold": "warningThreshold",
			"default-context":   "default",
			"cleanup":           "cleanup.enabled",
			"cleanup-max-age":   "cleanup.maxAge",
			"cleanup-max-files": "cleanup.maxFiles",
		},
	}
}

// ResolveKey resolves an alias to its canonical path or returns the path if already canonical
func (s *ConfigSchema) ResolveKey(key string) (string, error) {
	if canonicalPath, exists := s.Aliases[key]; exists {
		return canonicalPath, nil
	}

	if _, exists := s.ValidPaths[key]; exists {
		return key, nil
	}

	suggestions := s.FindSimilarKeys(key)
	if len(suggestions) > 0 {
		return "", fmt.Errorf("invalid config key %q. Did you mean one of: %s", key, strings.Join(suggestions, ", "))
	}

	return "", fmt.Errorf("invalid config key %q. Use 'qctx config describe' to see valid keys", key)
}

// ValidateValue validates a value against the field's type and validation rules
func (s *ConfigSchema) ValidateValue(path string, value interface{}) error {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return fmt.Errorf("unknown config path: %s", path)
	}

	valueType := reflect.TypeOf(value)
	if valueType != fieldInfo.Type {
		return fmt.Errorf("expected %s, got %v", fieldInfo.Type.String(), valueType)
	}

	if fieldInfo.Validation != nil {
		return fieldInfo.Validation(value)
	}

	return nil
}

// Apply validates value and stores it in cfg under the canonical path
func (s *ConfigSchema) Apply(cfg *Config, path string, value interface{}) error {
	if err := s.ValidateValue(path, value); err != nil {
		return err
	}
	s.ValidPaths[path].set(cfg, value)
	return nil
}

// Value reads the current value for a canonical path
func (s *ConfigSchema) Value(cfg *Config, path string) (interface{}, error) {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return nil, fmt.Errorf("unknown config path: %s", path)
	}
	return fieldInfo.get(cfg), nil
}

// GetFieldInfo returns information about a configuration field
func (s *ConfigSchema) GetFieldInfo(path string) (ConfigFieldInfo, error) {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return ConfigFieldInfo{}, fmt.Errorf("unknown config path: %s", path)
	}
	return fieldInfo, nil
}

// ListCanonicalKeys returns only the canonical configuration paths
func (s *ConfigSchema) ListCanonicalKeys() []string {
	keys := make([]string, 0, len(s.ValidPaths))
	for path := range s.ValidPaths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	return keys
}

// AliasesFor returns the sorted aliases that resolve to path
func (s *ConfigSchema) AliasesFor(path string) []string {
	var aliases []string
	for alias, target := range s.Aliases {
		if target == path {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// FindSimilarKeys finds keys similar to the input using simple string matching
func (s *ConfigSchema) FindSimilarKeys(key string) []string {
	if key == "" {
		return nil
	}

	var suggestions []string
	lowerKey := strings.ToLower(key)

	for _, path := range s.ListCanonicalKeys() {
		segments := strings.Split(path, ".")
		last := strings.ToLower(segments[len(segments)-1])
		if strings.Contains(strings.ToLower(path), lowerKey) || strings.Contains(lowerKey, last) {
			suggestions = append(suggestions, path)
		}
	}

	aliases := make([]string, 0, len(s.Aliases))
	for alias := range s.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		if strings.Contains(alias, lowerKey) || strings.Contains(lowerKey, alias) {
			suggestions = append(suggestions, alias)
		}
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}
