package config

import (
	"strings"

	"github.com/samber/lo"

	"github.com/chriscorrea/qctx/internal/qerr"
)

// ItemKind tells which list of a context an item landed in
type ItemKind string

const (
	ItemPattern ItemKind = "pattern"
	ItemExclude ItemKind = "exclude"
	ItemInclude ItemKind = "include"
)

// ValidateName rejects empty context names
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return qerr.New(qerr.EmptyContextName, "context name cannot be empty")
	}
	return nil
}

// Require returns the named context or CONTEXT_NOT_FOUND
func (c *Config) Require(name string) (Context, error) {
	ctx, ok := c.Lookup(name)
	if !ok {
		return Context{}, qerr.Newf(qerr.ContextNotFound, "context %q not found", name)
	}
	return ctx, nil
}

// Upsert stores ctx under name, replacing any previous definition
func (c *Config) Upsert(name string, ctx Context) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if c.Contexts == nil {
		c.Contexts = make(map[string]Context)
	}
	c.Contexts[name] = ctx
	return nil
}

// SetDefault makes name the default context
func (c *Config) SetDefault(name string) error {
	if _, err := c.Require(name); err != nil {
		return err
	}
	c.Default = name
	return nil
}

// Delete removes a context and every reference to it.
// If it was the default, the first remaining context (sorted) becomes the default.
func (c *Config) Delete(name string) error {
	if _, err := c.Require(name); err != nil {
		return err
	}
	delete(c.Contexts, name)

	for other, ctx := range c.Contexts {
		if lo.Contains(ctx.Include, name) {
			ctx.Include = lo.Without(ctx.Include, name)
			c.Contexts[other] = ctx
		}
	}

	if c.Default == name {
		c.Default = ""
		if names := c.Names(); len(names) > 0 {
			c.Default = names[0]
		}
	}
	return nil
}

// ClassifyItem decides which list item belongs in.
// "!glob" is an exclude, anything that looks like a glob or path is a pattern,
// the name of another context is an include, and anything else is a literal file pattern.
func (c *Config) ClassifyItem(item string) (ItemKind, string) {
	item = strings.TrimSpace(item)
	switch {
	case strings.HasPrefix(item, "!"):
		return ItemExclude, item
	case strings.ContainsAny(item, "*/"):
		return ItemPattern, item
	}
	if _, ok := c.Lookup(item); ok {
		return ItemInclude, item
	}
	return ItemPattern, item
}

// AddItem classifies item and appends it to the named context.
// It reports false when the item was already present.
func (c *Config) AddItem(name, item string) (ItemKind, bool, error) {
	ctx, err := c.Require(name)
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(item) == "" {
		return "", false, qerr.New(qerr.NoPatterns, "nothing to add")
	}

	kind, value := c.ClassifyItem(item)
	var list *[]string
	switch kind {
	case ItemExclude:
		list = &ctx.Exclude
	case ItemInclude:
		if value == name {
			return kind, false, qerr.Newf(qerr.CircularDependency, "context %q cannot include itself", name)
		}
		list = &ctx.Include
	default:
		list = &ctx.Patterns
	}

	if lo.Contains(*list, value) {
		return kind, false, nil
	}
	*list = append(*list, value)
	c.Contexts[name] = ctx
	return kind, true, nil
}

// RemoveItem removes item from every list of the named context.
// It reports whether anything was removed.
func (c *Config) RemoveItem(name, item string) (bool, error) {
	ctx, err := c.Require(name)
	if err != nil {
		return false, err
	}

	item = strings.TrimSpace(item)
	before := len(ctx.Patterns) + len(ctx.Exclude) + len(ctx.Include)
	ctx.Patterns = lo.Without(ctx.Patterns, item)
	ctx.Exclude = lo.Without(ctx.Exclude, item)
	ctx.Include = lo.Without(ctx.Include, item)

	if len(ctx.Patterns)+len(ctx.Exclude)+len(ctx.Include) == before {
		return false, nil
	}
	c.Contexts[name] = ctx
	return true, nil
}
