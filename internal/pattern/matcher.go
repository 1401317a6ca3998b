// Package pattern decides whether a relative file path is selected by a set
// of include and exclude globs.
//
// Globs use doublestar syntax: `*` matches within a path segment, `**`
// matches across segments, plus `?`, character classes and `{a,b}`
// alternation. Paths are always compared in forward-slash form.
package pattern

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/chriscorrea/qctx/internal/qerr"
)

// NegationPrefix marks an exclude glob when written inline with include globs
const NegationPrefix = "!"

// Matcher holds a normalized, validated set of globs
type Matcher struct {
	include []string
	exclude []string
}

// New builds a Matcher. Include entries starting with "!" are treated as
// excludes; the prefix is optional on exclude entries. An include list that
// ends up empty, or any malformed glob, fails with INVALID_PATTERNS.
func New(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range include {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, NegationPrefix) {
			m.exclude = append(m.exclude, normalizeGlob(strings.TrimPrefix(p, NegationPrefix)))
			continue
		}
		m.include = append(m.include, normalizeGlob(p))
	}

	for _, p := range exclude {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), NegationPrefix))
		if p == "" {
			continue
		}
		m.exclude = append(m.exclude, normalizeGlob(p))
	}

	if len(m.include) == 0 {
		return nil, qerr.New(qerr.InvalidPatterns, "invalid or empty patterns array")
	}

	for _, p := range append(append([]string{}, m.include...), m.exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, qerr.Newf(qerr.InvalidPatterns, "invalid glob pattern %q", p)
		}
	}

	return m, nil
}

// Match reports whether path matches at least one include glob and no exclude glob
func (m *Matcher) Match(path string) bool {
	path = NormalizePath(path)
	return matchAny(m.include, path) && !matchAny(m.exclude, path)
}

// Include returns the normalized include globs
func (m *Matcher) Include() []string {
	return append([]string(nil), m.include...)
}

// Exclude returns the normalized exclude globs, without "!" prefixes
func (m *Matcher) Exclude() []string {
	return append([]string(nil), m.exclude...)
}

// Matches is the one-shot form of New followed by Match
func Matches(path string, include, exclude []string) (bool, error) {
	m, err := New(include, exclude)
	if err != nil {
		return false, err
	}
	return m.Match(path), nil
}

// NormalizePath converts path to the forward-slash relative form globs are matched against
func NormalizePath(path string) string {
	path = filepath.ToSlash(path)
	for strings.HasPrefix(path, "./") {
		path = strings.TrimPrefix(path, "./")
	}
	return path
}

func normalizeGlob(p string) string {
	return NormalizePath(p)
}

func matchAny(globs []string, path string) bool {
	for _, g := range globs {
		// globs are validated in New, so the error is always nil here
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return false
}
