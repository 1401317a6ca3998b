package config

import (
	"sort"
)

// built-in limits used when neither the context nor the config sets one
const (
	DefaultMaxLines         = 30000
	DefaultWarningThreshold = 15000
)

// Config represents the complete context store for qctx
type Config struct {
	Contexts         map[string]Context `mapstructure:"contexts" yaml:"contexts" json:"contexts"`
	Default          string             `mapstructure:"default" yaml:"default,omitempty" json:"default,omitempty"`
	MaxLines         int                `mapstructure:"maxLines" yaml:"maxLines,omitempty" json:"maxLines,omitempty"`
	WarningThreshold int                `mapstructure:"warningThreshold" yaml:"warningThreshold,omitempty" json:"warningThreshold,omitempty"`
	Cleanup          Cleanup            `mapstructure:"cleanup" yaml:"cleanup" json:"cleanup"`
}

// Context is a named, composable set of file-matching rules
type Context struct {
	Patterns    []string `mapstructure:"patterns" yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Include     []string `mapstructure:"include" yaml:"include,omitempty" json:"include,omitempty"`
	Description string   `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`

	// per-context overrides; zero means "use the global value"
	MaxLines         int `mapstructure:"maxLines" yaml:"maxLines,omitempty" json:"maxLines,omitempty"`
	WarningThreshold int `mapstructure:"warningThreshold" yaml:"warningThreshold,omitempty" json:"warningThreshold,omitempty"`
}

// Cleanup is the retention policy for saved output files
type Cleanup struct {
	Enabled  bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	MaxAge   int  `mapstructure:"maxAge" yaml:"maxAge" json:"maxAge"` // days
	MaxFiles int  `mapstructure:"maxFiles" yaml:"maxFiles" json:"maxFiles"`
}

// Limits are the effective line budget and warning threshold for one context
type Limits struct {
	MaxLines         int
	WarningThreshold int
}

// Lookup returns the named context
func (c *Config) Lookup(name string) (Context, bool) {
	if c == nil || c.Contexts == nil {
		return Context{}, false
	}
	ctx, ok := c.Contexts[name]
	return ctx, ok
}

// Names returns all context names in sorted order
func (c *Config) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LimitsFor returns the effective limits: context override, then global, then built-in default
func (c *Config) LimitsFor(ctx Context) Limits {
	return Limits{
		MaxLines:         firstPositive(ctx.MaxLines, c.MaxLines, DefaultMaxLines),
		WarningThreshold: firstPositive(ctx.WarningThreshold, c.WarningThreshold, DefaultWarningThreshold),
	}
}

// Clone returns a deep copy so callers can mutate without touching the original
func (c *Config) Clone() *Config {
	out := *c
	out.Contexts = make(map[string]Context, len(c.Contexts))
	for name, ctx := range c.Contexts {
		out.Contexts[name] = ctx.clone()
	}
	return &out
}

func (ctx Context) clone() Context {
	out := ctx
	out.Patterns = append([]string(nil), ctx.Patterns...)
	out.Exclude = append([]string(nil), ctx.Exclude...)
	out.Include = append([]string(nil), ctx.Include...)
	return out
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
