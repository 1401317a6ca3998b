package state

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createStateFile is a helper to write a state file with content
func createStateFile(t *testing.T, home, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(home, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(home, FileName), []byte(content), 0644))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name         string
		content      *string
		expectedDirs []string
		expectWarn   bool
	}{
		{
			name:         "missing file is empty",
			content:      nil,
			expectedDirs: []string{},
		},
		{
			name:         "valid file",
			content:      strPtr(`{"/work/a": "react", "/work/b": "docs"}`),
			expectedDirs: []string{"/work/a", "/work/b"},
		},
		{
			name:         "corrupt file resets with a warning",
			content:      strPtr(`{"/work/a": `),
			expectedDirs: []string{},
			expectWarn:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			if tt.content != nil {
				createStateFile(t, home, *tt.content)
			}

			var logs bytes.Buffer
			s, err := Load(home, logger.NewWithWriter(&logs, false))
			require.NoError(t, err)

			assert.Equal(t, tt.expectedDirs, s.Dirs())
			if tt.expectWarn {
				assert.Contains(t, logs.String(), "State file is corrupted")
			} else {
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestState_SetSaveReload(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".qctx")
	dir := t.TempDir()

	s, err := Load(home, nil)
	require.NoError(t, err)

	s.Set(dir, "backend")
	require.NoError(t, s.Save())

	reloaded, err := Load(home, nil)
	require.NoError(t, err)
	name, ok := reloaded.Get(dir)
	assert.True(t, ok)
	assert.Equal(t, "backend", name)
}

func TestState_SaveOnlyWhenChanged(t *testing.T) {
	home := t.TempDir()

	s, err := Load(home, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	_, err = os.Stat(s.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist), "an unchanged state should not be written")
}

func TestState_SaveToUnwritableHome(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s, err := Load(filepath.Join(blocker, ".qctx"), nil)
	require.NoError(t, err)
	s.Set("/work", "react")

	err = s.Save()
	require.Error(t, err)
	assert.Equal(t, qerr.DirCreate, qerr.CodeOf(err))
}

func TestState_LoadUnreadable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "state file is a directory",
			setup: func(t *testing.T) string {
				home := t.TempDir()
				require.NoError(t, os.Mkdir(filepath.Join(home, FileName), 0755))
				return home
			},
		},
		{
			name: "home is a file",
			setup: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
				return blocker
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.Empty(t, s.Dirs())

			_, ok := s.Get("/work")
			assert.False(t, ok)
		})
	}
}

func TestState_Forget(t *testing.T) {
	s, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	s.Set("/work/a", "old")
	s.Set("/work/b", "old")
	s.Set("/work/c", "keep")

	assert.Equal(t, 2, s.Forget("old"))
	assert.Equal(t, []string{"/work/c"}, s.Dirs())
	assert.Zero(t, s.Forget("unknown"))
}

func TestState_Current(t *testing.T) {
	contexts := map[string]config.Context{
		"alpha": {Patterns: []string{"*"}},
		"beta":  {Patterns: []string{"*"}},
	}

	tests := []struct {
		name     string
		recorded string
		cfg      *config.Config
		expected string
		code     qerr.Code
	}{
		{
			name:     "recorded context wins",
			recorded: "beta",
			cfg:      &config.Config{Contexts: contexts, Default: "alpha"},
			expected: "beta",
		},
		{
			name:     "default when nothing recorded",
			cfg:      &config.Config{Contexts: contexts, Default: "beta"},
			expected: "beta",
		},
		{
			name:     "stale recorded context falls back to default",
			recorded: "deleted",
			cfg:      &config.Config{Contexts: contexts, Default: "beta"},
			expected: "beta",
		},
		{
			name:     "first context by name when default is missing",
			cfg:      &config.Config{Contexts: contexts, Default: "gone"},
			expected: "alpha",
		},
		{
			name: "no contexts at all",
			cfg:  &config.Config{Contexts: map[string]config.Context{}},
			code: qerr.NoContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := Load(t.TempDir(), nil)
			require.NoError(t, err)
			if tt.recorded != "" {
				s.Set(dir, tt.recorded)
			}

			name, err := s.Current(dir, tt.cfg)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, qerr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func strPtr(s string) *string {
	return &s
}
