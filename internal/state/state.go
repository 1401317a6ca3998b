// Package state remembers which context was last used in each working directory.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"
)

// FileName is the state file inside the qctx home directory
const FileName = "state.json"

// State maps absolute working directories to their current context name.
// It is loaded once per invocation and saved once at the end.
type State struct {
	path    string
	entries map[string]string
	dirty   bool
	logger  *slog.Logger
}

// Load reads the state file in home. A missing file is an empty state;
// an unreadable or corrupt one is reset to empty with a warning.
func Load(home string, l *slog.Logger) (*State, error) {
	s := &State{
		path:    filepath.Join(home, FileName),
		entries: make(map[string]string),
		logger:  logger.OrDiscard(l),
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		s.logger.Warn("State file is unreadable, starting fresh", "path", s.path, "error", err)
		return s, nil
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("State file is corrupted, starting fresh", "path", s.path, "error", err)
		s.dirty = true
		return s, nil
	}
	for dir, name := range entries {
		s.entries[dir] = name
	}
	return s, nil
}

// Path is the state file location
func (s *State) Path() string {
	return s.path
}

// Get returns the context recorded for dir
func (s *State) Get(dir string) (string, bool) {
	name, ok := s.entries[key(dir)]
	return name, ok && name != ""
}

// Set records name as the current context for dir
func (s *State) Set(dir, name string) {
	k := key(dir)
	if s.entries[k] == name {
		return
	}
	s.entries[k] = name
	s.dirty = true
}

// Forget drops every directory that points at name and returns how many there were
func (s *State) Forget(name string) int {
	n := 0
	for dir, current := range s.entries {
		if current == name {
			delete(s.entries, dir)
			n++
		}
	}
	if n > 0 {
		s.dirty = true
	}
	return n
}

// Dirs returns the recorded directories in sorted order
func (s *State) Dirs() []string {
	dirs := make([]string, 0, len(s.entries))
	for dir := range s.entries {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Current picks the context for dir: the recorded one, then the configured
// default, then the first context by name. NO_CONTEXT if there is none.
func (s *State) Current(dir string, cfg *config.Config) (string, error) {
	if name, ok := s.Get(dir); ok {
		if _, exists := cfg.Lookup(name); exists {
			return name, nil
		}
		s.logger.Warn("Recorded context no longer exists, falling back", "dir", dir, "context", name)
	}

	if cfg.Default != "" {
		if _, exists := cfg.Lookup(cfg.Default); exists {
			return cfg.Default, nil
		}
	}

	if names := cfg.Names(); len(names) > 0 {
		return names[0], nil
	}

	return "", qerr.New(qerr.NoContext, "no context specified and no default context found")
}

// Save writes the state file if anything changed
func (s *State) Save() error {
	if !s.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return qerr.Wrap(qerr.DirCreate, err, fmt.Sprintf("failed to create directory %s", filepath.Dir(s.path)))
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return qerr.Wrap(qerr.FileSave, err, fmt.Sprintf("failed to save state to %s", s.path))
	}

	s.dirty = false
	return nil
}

func key(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
