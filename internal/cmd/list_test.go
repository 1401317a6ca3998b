package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/qerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		expected string
	}{
		{
			name:     "default is current",
			expected: "Available contexts:\n* a\n  b\n",
		},
		{
			name:     "switched context is current",
			current:  "b",
			expected: "Available contexts:\n  a\n* b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, workDir := setupTestState(t, testConfigYAML)
			if tt.current != "" {
				state.current.Set(workDir, tt.current)
			}

			output, err := executeCommand(createListCommand())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output)
		})
	}

	t.Run("verbose", func(t *testing.T) {
		setupTestState(t, testConfigYAML)

		output, err := executeCommand(createListCommand(), "--verbose")
		require.NoError(t, err)
		assert.NotContains(t, output, "\x1b[")

		lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "DESCRIPTION")
		assert.True(t, strings.HasPrefix(lines[1], "* a"))
		assert.Contains(t, lines[2], "docs and text")
	})

	t.Run("no contexts", func(t *testing.T) {
		setupTestState(t, "contexts: {}\n")

		output, err := executeCommand(createListCommand())
		require.NoError(t, err)
		assert.Equal(t, "Available contexts:\n", output)
	})
}

func TestShowCommand(t *testing.T) {
	setupTestState(t, testConfigYAML)

	output, err := executeCommand(createShowCommand(), "b")
	require.NoError(t, err)

	assert.Contains(t, output, "Context: b\n")
	assert.Contains(t, output, "Patterns:\n  *.md\n  *.txt\n")
	assert.Contains(t, output, "Files: 2\n")
	assert.Contains(t, output, "  x.txt\n")
	assert.Contains(t, output, "  y.md\n")
	assert.Contains(t, output, "Max lines: 30000, warning threshold: 15000\n")

	entries, err := os.ReadDir(state.settings.Home)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, ".txt", filepath.Ext(entry.Name()), "show must not save output")
	}

	_, err = executeCommand(createShowCommand(), "missing")
	assert.True(t, errors.Is(err, qerr.ContextNotFound))
}

func TestCleanupCommand(t *testing.T) {
	writeSaved := func(t *testing.T, home, name string, age time.Duration) string {
		path := filepath.Join(home, name)
		require.NoError(t, os.WriteFile(path, []byte("saved context"), 0644))
		modTime := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
		return path
	}

	t.Run("deletes expired files", func(t *testing.T) {
		home, _ := setupTestState(t, testConfigYAML)
		old := writeSaved(t, home, "a_2020-01-01T00-00-00.000.txt", 30*24*time.Hour)
		recent := writeSaved(t, home, "a_2020-02-01T00-00-00.000.txt", time.Hour)

		output, err := executeCommand(createCleanupCommand())
		require.NoError(t, err)
		assert.Equal(t, "Deleted 1 file(s), freeing 13 B (1 kept)\n", output)
		assert.NoFileExists(t, old)
		assert.FileExists(t, recent)
		assert.FileExists(t, filepath.Join(home, config.FileName))
	})

	t.Run("dry run", func(t *testing.T) {
		home, _ := setupTestState(t, testConfigYAML)
		old := writeSaved(t, home, "a_2020-01-01T00-00-00.000.txt", 30*24*time.Hour)

		output, err := executeCommand(createCleanupCommand(), "--dry-run")
		require.NoError(t, err)
		assert.Equal(t, "Would delete 1 file(s), freeing 13 B (0 kept)\n", output)
		assert.FileExists(t, old)
	})

	t.Run("disabled", func(t *testing.T) {
		home, _ := setupTestState(t, testConfigYAML+"cleanup:\n  enabled: false\n")
		old := writeSaved(t, home, "a_2020-01-01T00-00-00.000.txt", 30*24*time.Hour)

		output, err := executeCommand(createCleanupCommand())
		require.NoError(t, err)
		assert.Contains(t, output, "Cleanup is disabled")
		assert.FileExists(t, old)
	})
}

func TestConfigCommand(t *testing.T) {
	home, workDir := setupTestState(t, testConfigYAML)

	output, err := executeCommand(createConfigCommand())
	require.NoError(t, err)

	globalPath := filepath.Join(home, config.FileName)
	assert.Contains(t, output, "Home: "+home+"\n")
	assert.Contains(t, output, "Global config: "+globalPath+"\n")
	assert.Contains(t, output, "Local config: (none, searched from "+workDir+")\n")
	assert.Contains(t, output, "Changes saved to: "+globalPath+"\n")
	assert.Contains(t, output, "Loaded from: "+globalPath+"\n")
	assert.Contains(t, output, "Contexts: 2\n")
}

func TestConfigListCommand(t *testing.T) {
	setupTestState(t, testConfigYAML)

	output, err := executeCommand(createConfigCommand(), "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "ALIASES")

	byKey := map[string]string{}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		byKey[fields[0]] = fields[1]
	}
	assert.Equal(t, map[string]string{
		"cleanup.enabled":  "true",
		"cleanup.maxAge":   "7",
		"cleanup.maxFiles": "100",
		"default":          "a",
		"maxLines":         "30000",
		"warningThreshold": "15000",
	}, byKey)
}
