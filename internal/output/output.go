// Package output keeps timestamped copies of assembled contexts and prunes
// old copies according to the cleanup policy.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"
)

// Ext is the extension of saved output files
const Ext = ".txt"

// timestamp layout used in file names; sortable and safe on every filesystem
const timestampLayout = "2006-01-02T15-04-05.000"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store writes and prunes saved output files in one directory
type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewStore creates a Store rooted at dir (normally ~/.qctx)
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		now:    time.Now,
		logger: logger.Discard(),
	}
}

// WithLogger sets the logger for the store
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.logger = logger.OrDiscard(l)
	return s
}

// WithClock replaces the time source
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Dir is the directory files are saved to
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the saved file name for a context at time t
func FileName(name string, t time.Time) string {
	safe := strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	if safe == "" {
		safe = "context"
	}
	return fmt.Sprintf("%s_%s%s", safe, t.Format(timestampLayout), Ext)
}

// Save writes content to <dir>/<name>_<timestamp>.txt and returns the path
func (s *Store) Save(name, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", qerr.Wrap(qerr.DirCreate, err, fmt.Sprintf("failed to create directory %s", s.dir))
	}

	path := filepath.Join(s.dir, FileName(name, s.now()))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", qerr.Wrap(qerr.FileSave, err, fmt.Sprintf("failed to save context to %s", path))
	}

	s.logger.Debug("Saved context", "path", path, "bytes", len(content))
	return path, nil
}

// Report describes what a cleanup pass did (or would do, in a dry run)
type Report struct {
	Deleted    []string
	FreedBytes int64
	Kept       int
	DryRun     bool
}

// String summarizes the report for humans
func (r Report) String() string {
	verb := "Deleted"
	if r.DryRun {
		verb = "Would delete"
	}
	return fmt.Sprintf("%s %d file(s), freeing %s (%d kept)",
		verb, len(r.Deleted), humanize.Bytes(uint64(r.FreedBytes)), r.Kept)
}

type savedFile struct {
	path    string
	size    int64
	modTime time.Time
}

// Cleanup applies the retention policy: saved files are ordered newest first and
// a file is deleted when it is beyond the first MaxFiles or older than MaxAge days.
// A disabled policy does nothing.
func (s *Store) Cleanup(policy config.Cleanup, dryRun bool) (Report, error) {
	report := Report{DryRun: dryRun}
	if !policy.Enabled {
		return report, nil
	}

	files, err := s.list()
	if err != nil {
		return report, err
	}

	cutoff := s.now().Add(-time.Duration(policy.MaxAge) * 24 * time.Hour)
	var failed []string

	for i, f := range files {
		expired := policy.MaxAge > 0 && f.modTime.Before(cutoff)
		overflow := policy.MaxFiles > 0 && i >= policy.MaxFiles
		if !expired && !overflow {
			report.Kept++
			continue
		}

		if !dryRun {
			if err := os.Remove(f.path); err != nil {
				s.logger.Warn("Failed to delete saved context", "path", f.path, "error", err)
				failed = append(failed, filepath.Base(f.path))
				report.Kept++
				continue
			}
		}
		report.Deleted = append(report.Deleted, f.path)
		report.FreedBytes += f.size
	}

	s.logger.Debug("Cleanup finished", "deleted", len(report.Deleted), "freed", report.FreedBytes, "dry_run", dryRun)

	if len(failed) > 0 {
		return report, qerr.Newf(qerr.Cleanup, "failed to delete %d file(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return report, nil
}

// list returns saved files, newest first
func (s *Store) list() ([]savedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, qerr.Wrap(qerr.Cleanup, err, fmt.Sprintf("failed to list %s", s.dir))
	}

	var files []savedFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != Ext {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, savedFile{
			path:    filepath.Join(s.dir, entry.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path > files[j].path
		}
		return files[i].modTime.After(files[j].modTime)
	})
	return files, nil
}
