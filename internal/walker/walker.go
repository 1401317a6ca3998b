// Package walker enumerates the files under a directory tree that a
// pattern.Matcher selects.
package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/pattern"
	"github.com/chriscorrea/qctx/internal/qerr"
)

// Walker recursively lists matching files.
//
// Subdirectories are listed concurrently, but results are merged back in
// directory-listing order (entries sorted by name, depth first), so the
// output order is the same on every run over the same tree.
type Walker struct {
	base           string
	logger         *slog.Logger
	skipUnreadable bool
}

// New creates a Walker whose results are relative to base.
// An empty base means the process working directory.
func New(base string) (*Walker, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Walker{
		base:   abs,
		logger: logger.Discard(),
	}, nil
}

// WithLogger sets the logger for the walker
func (w *Walker) WithLogger(l *slog.Logger) *Walker {
	w.logger = logger.OrDiscard(l)
	return w
}

// WithSkipUnreadable makes unlistable directories a logged warning instead of DIR_READ_ERROR
func (w *Walker) WithSkipUnreadable(skip bool) *Walker {
	w.skipUnreadable = skip
	return w
}

// Base returns the directory results are relative to
func (w *Walker) Base() string {
	return w.base
}

// Walk lists the files under root selected by include and exclude globs
func (w *Walker) Walk(ctx context.Context, root string, include, exclude []string) ([]string, error) {
	m, err := pattern.New(include, exclude)
	if err != nil {
		return nil, err
	}
	return w.WalkMatcher(ctx, root, m)
}

// WalkMatcher lists the files under root selected by m
func (w *Walker) WalkMatcher(ctx context.Context, root string, m *pattern.Matcher) ([]string, error) {
	if root == "" {
		root = w.base
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(w.base, root)
	}

	w.logger.Debug("Matching files", "root", root, "patterns", m.Include(), "exclude", m.Exclude())

	files, err := w.walkDir(ctx, root, m)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("Matched files", "count", len(files))
	return files, nil
}

func (w *Walker) walkDir(ctx context.Context, dir string, m *pattern.Matcher) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if w.skipUnreadable {
			w.logger.Warn("Skipping unreadable directory", "dir", dir, "error", err)
			return nil, nil
		}
		return nil, qerr.Wrap(qerr.DirRead, err, fmt.Sprintf("error reading directory %s", w.rel(dir)))
	}

	// one slot per entry keeps the merge in listing order
	results := make([][]string, len(entries))
	g, gctx := errgroup.WithContext(ctx)

	for i, entry := range entries {
		i := i
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			g.Go(func() error {
				files, err := w.walkDir(gctx, full, m)
				results[i] = files
				return err
			})
			continue
		}

		if !isRegularFile(full, entry) {
			continue
		}

		rel := w.rel(full)
		if m.Match(rel) {
			results[i] = []string{rel}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []string
	for _, r := range results {
		files = append(files, r...)
	}
	return files, nil
}

// rel returns path relative to the walker base, in forward-slash form
func (w *Walker) rel(path string) string {
	rel, err := filepath.Rel(w.base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// isRegularFile accepts regular files and symlinks that resolve to regular files.
// symlinked directories are never followed.
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
