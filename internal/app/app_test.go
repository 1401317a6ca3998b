package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chriscorrea/qctx/internal/assemble"
	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/output"
	"github.com/chriscorrea/qctx/internal/qerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink implements clipboard.Sink for testing
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Write(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// scenarioConfig is b including a, as in the two-file scenario
func scenarioConfig(maxLines int) *config.Config {
	return &config.Config{
		Contexts: map[string]config.Context{
			"a": {Patterns: []string{"*.txt"}},
			"b": {Patterns: []string{"*.md"}, Include: []string{"a"}, Description: "docs and text"},
		},
		MaxLines: maxLines,
		Cleanup:  config.Cleanup{Enabled: true, MaxFiles: 100, MaxAge: 7},
	}
}

// setupWorkspace creates the scenario tree and an isolated qctx home
func setupWorkspace(t *testing.T) (workDir string, settings config.Settings) {
	t.Helper()

	workDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "x.txt"), []byte("1\n2\n3\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "y.md"), []byte("a\nb\n"), 0644))

	settings = config.Settings{Home: filepath.Join(t.TempDir(), ".qctx")}
	return workDir, settings
}

func TestApp_Match(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	a := NewApp(scenarioConfig(100), settings, workDir, nil)

	m, err := a.Match(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"*.md", "*.txt"}, m.Set.Patterns)
	assert.ElementsMatch(t, []string{"y.md", "x.txt"}, m.Files)
	assert.Equal(t, 100, m.Limits.MaxLines)
	assert.Equal(t, config.DefaultWarningThreshold, m.Limits.WarningThreshold)
}

func TestApp_Run_Scenario(t *testing.T) {
	workDir, settings := setupWorkspace(t)

	sink := &MockSink{}
	sink.On("Write", mock.MatchedBy(func(text string) bool {
		return strings.HasPrefix(text, "Context: b\nDescription: docs and text\n\n")
	})).Return(nil).Once()

	a := NewApp(scenarioConfig(100), settings, workDir, nil).WithClipboard(sink)
	out, err := a.Run(context.Background(), "b")
	require.NoError(t, err)

	res := out.Document.Result
	assert.Equal(t, 5, res.TotalLines)
	assert.Contains(t, res.Body, "--- x.txt ---\n\n1\n2\n3\n\n")
	assert.Contains(t, res.Body, "--- y.md ---\n\na\nb\n\n")
	assert.False(t, res.LimitReached)
	assert.Empty(t, out.Warnings)
	assert.True(t, out.Copied)
	assert.Equal(t, "Total lines: 5", out.Document.Summary())

	require.NotEmpty(t, out.SavedPath)
	saved, err := os.ReadFile(out.SavedPath)
	require.NoError(t, err)
	assert.Equal(t, out.Document.String(), string(saved))
	require.NotNil(t, out.Cleanup)

	sink.AssertExpectations(t)
}

func TestApp_Run_BudgetFour(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	settings.NoSave = true

	sink := &MockSink{}
	sink.On("Write", mock.Anything).Return(nil)

	out, err := NewApp(scenarioConfig(4), settings, workDir, nil).WithClipboard(sink).Run(context.Background(), "b")
	require.NoError(t, err)

	res := out.Document.Result
	assert.Equal(t, 4, res.TotalLines)
	assert.True(t, res.LimitReached)
	assert.Equal(t, "x.txt", res.Included[0])
	assert.Contains(t, res.Body, "--- x.txt ---\n\n1\n2\n3\n\n")
	assert.Equal(t, 1, strings.Count(strings.Join(out.Warnings, "\n"), assemble.LimitNotice))
	assert.Empty(t, out.SavedPath)
}

func TestApp_Run_MaxLinesSettingOverridesConfig(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	settings.NoSave = true
	settings.NoClipboard = true
	settings.MaxLines = 2

	out, err := NewApp(scenarioConfig(100), settings, workDir, nil).Run(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, 2, out.Document.Result.TotalLines)
	assert.False(t, out.Copied)
}

func TestApp_Run_ClipboardFailureIsAWarning(t *testing.T) {
	workDir, settings := setupWorkspace(t)

	sink := &MockSink{}
	sink.On("Write", mock.Anything).Return(qerr.New(qerr.Clipboard, "no clipboard utility available"))

	out, err := NewApp(scenarioConfig(100), settings, workDir, nil).WithClipboard(sink).Run(context.Background(), "b")
	require.NoError(t, err)

	assert.False(t, out.Copied)
	assert.Contains(t, out.Warnings, "Error [CLIPBOARD_ERROR]: no clipboard utility available")
	assert.NotEmpty(t, out.SavedPath, "the file is still saved")
}

func TestApp_Run_WarningsAreNotLoggedTwice(t *testing.T) {
	workDir, settings := setupWorkspace(t)

	sink := &MockSink{}
	sink.On("Write", mock.Anything).Return(qerr.New(qerr.Clipboard, "no clipboard utility available"))

	var logs bytes.Buffer
	out, err := NewApp(scenarioConfig(100), settings, workDir, logger.NewWithWriter(&logs, false)).
		WithClipboard(sink).Run(context.Background(), "b")
	require.NoError(t, err)

	assert.Len(t, out.Warnings, 1)
	assert.Empty(t, logs.String(), "warnings reach the user through the outcome only")
}

func TestApp_Run_SaveFailureIsAWarning(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	settings.Home = filepath.Join(blocker, ".qctx")
	settings.NoClipboard = true

	out, err := NewApp(scenarioConfig(100), settings, workDir, nil).Run(context.Background(), "b")
	require.NoError(t, err)

	assert.Empty(t, out.SavedPath)
	require.Len(t, out.Warnings, 1)
	assert.True(t, strings.HasPrefix(out.Warnings[0], "Error [DIR_CREATE_ERROR]"))
}

func TestApp_Run_CleanupAfterSave(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	settings.NoClipboard = true
	cfg := scenarioConfig(100)
	cfg.Cleanup = config.Cleanup{Enabled: true, MaxFiles: 1}

	past := time.Now().Add(-time.Hour)
	old, err := output.NewStore(settings.Home).
		WithClock(func() time.Time { return past }).
		Save("b", "old copy")
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(old, past, past))

	out, err := NewApp(cfg, settings, workDir, nil).Run(context.Background(), "b")
	require.NoError(t, err)

	require.NotNil(t, out.Cleanup)
	assert.Equal(t, []string{old}, out.Cleanup.Deleted)
	assert.NoFileExists(t, old)
	assert.FileExists(t, out.SavedPath)
}

func TestApp_Run_LargeContextWarning(t *testing.T) {
	workDir, settings := setupWorkspace(t)
	settings.NoSave = true
	settings.NoClipboard = true
	cfg := scenarioConfig(100)
	cfg.WarningThreshold = 4

	out, err := NewApp(cfg, settings, workDir, nil).Run(context.Background(), "b")
	require.NoError(t, err)

	assert.Contains(t, out.Warnings, "Warning: Large context (5 lines). This may impact performance.")
}

func TestApp_Run_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contexts map[string]config.Context
		run      string
		code     qerr.Code
	}{
		{
			name:     "missing context",
			contexts: map[string]config.Context{"a": {Patterns: []string{"*"}}},
			run:      "missing",
			code:     qerr.ContextNotFound,
		},
		{
			name: "cycle",
			contexts: map[string]config.Context{
				"a": {Include: []string{"b"}},
				"b": {Include: []string{"a"}},
			},
			run:  "a",
			code: qerr.CircularDependency,
		},
		{
			name:     "no patterns",
			contexts: map[string]config.Context{"empty": {Exclude: []string{"**/dist/**"}}},
			run:      "empty",
			code:     qerr.InvalidPatterns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workDir, settings := setupWorkspace(t)
			sink := &MockSink{}

			a := NewApp(&config.Config{Contexts: tt.contexts}, settings, workDir, nil).WithClipboard(sink)
			out, err := a.Run(context.Background(), tt.run)

			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
			sink.AssertNotCalled(t, "Write", mock.Anything)
		})
	}
}
