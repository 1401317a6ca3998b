// Package resolve flattens a named context and everything it includes into
// one set of include and exclude globs.
package resolve

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"
)

// Set is the flattened result of resolving a context
type Set struct {
	Patterns []string
	Exclude  []string
}

// Dedupe drops repeated globs, keeping the first occurrence of each
func (s Set) Dedupe() Set {
	return Set{
		Patterns: lo.Uniq(s.Patterns),
		Exclude:  lo.Uniq(s.Exclude),
	}
}

// Empty reports whether the set selects nothing
func (s Set) Empty() bool {
	return len(s.Patterns) == 0
}

// Resolver expands contexts defined in a Config
type Resolver struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Resolver over cfg
func New(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg, logger: logger.Discard()}
}

// WithLogger sets the logger for the resolver
func (r *Resolver) WithLogger(l *slog.Logger) *Resolver {
	r.logger = logger.OrDiscard(l)
	return r
}

// Resolve returns the own patterns and excludes of name followed by those of
// every included context, depth first in listed order. Duplicates are kept.
//
// A context that includes another through two different branches is fine;
// a context that reaches itself again on the current path is CIRCULAR_DEPENDENCY.
func (r *Resolver) Resolve(name string) (Set, error) {
	return r.resolve(name, nil)
}

// path is the chain of names being expanded; each branch works on its own copy
func (r *Resolver) resolve(name string, path []string) (Set, error) {
	if lo.Contains(path, name) {
		chain := append(append([]string(nil), path...), name)
		return Set{}, qerr.Newf(qerr.CircularDependency,
			"circular dependency detected: %s", strings.Join(chain, " -> "))
	}
	path = append(append([]string(nil), path...), name)

	ctx, ok := r.cfg.Lookup(name)
	if !ok {
		if len(path) > 1 {
			return Set{}, qerr.Newf(qerr.ContextNotFound,
				"context %q not found (included from %q)", name, path[len(path)-2])
		}
		return Set{}, qerr.Newf(qerr.ContextNotFound, "context %q not found", name)
	}

	set := Set{
		Patterns: append([]string(nil), ctx.Patterns...),
		Exclude:  append([]string(nil), ctx.Exclude...),
	}

	for _, included := range ctx.Include {
		sub, err := r.resolve(included, path)
		if err != nil {
			return Set{}, err
		}
		set.Patterns = append(set.Patterns, sub.Patterns...)
		set.Exclude = append(set.Exclude, sub.Exclude...)
	}

	r.logger.Debug("Resolved context", "name", name, "depth", len(path),
		"patterns", len(set.Patterns), "exclude", len(set.Exclude))
	return set, nil
}

// Resolve expands name against cfg
func Resolve(name string, cfg *config.Config) (Set, error) {
	return New(cfg).Resolve(name)
}

// CheckCycles resolves every context in cfg and returns the first
// CIRCULAR_DEPENDENCY. Dangling includes are left for Resolve to report.
func CheckCycles(cfg *config.Config) error {
	r := New(cfg)
	for _, name := range cfg.Names() {
		if _, err := r.Resolve(name); errors.Is(err, qerr.CircularDependency) {
			return err
		}
	}
	return nil
}
