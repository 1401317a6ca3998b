package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chriscorrea/qctx/internal/assemble"
	"github.com/chriscorrea/qctx/internal/clipboard"
	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/output"
	"github.com/chriscorrea/qctx/internal/pattern"
	"github.com/chriscorrea/qctx/internal/qerr"
	"github.com/chriscorrea/qctx/internal/resolve"
	"github.com/chriscorrea/qctx/internal/walker"
)

// Match is a resolved context and the files it selects
type Match struct {
	Name    string
	Base    string // directory Files are relative to
	Context config.Context
	Set     resolve.Set
	Files   []string
	Limits  config.Limits
}

// Outcome is everything a run produced, for the CLI to report
type Outcome struct {
	Match     *Match
	Document  *assemble.Document
	Copied    bool
	SavedPath string
	Cleanup   *output.Report
	Warnings  []string
}

// App represents the main application and holds its dependencies
type App struct {
	cfg       *config.Config
	settings  config.Settings
	workDir   string
	clipboard clipboard.Sink
	store     *output.Store
	logger    *slog.Logger
}

// NewApp creates a new App that resolves contexts from cfg against the files under workDir
func NewApp(cfg *config.Config, settings config.Settings, workDir string, l *slog.Logger) *App {
	l = logger.OrDiscard(l)

	var sink clipboard.Sink = clipboard.System{}
	if settings.NoClipboard {
		sink = clipboard.Discard{}
	}

	return &App{
		cfg:       cfg,
		settings:  settings,
		workDir:   workDir,
		clipboard: sink,
		store:     output.NewStore(settings.Home).WithLogger(l),
		logger:    l,
	}
}

// WithClipboard replaces the clipboard sink
func (a *App) WithClipboard(s clipboard.Sink) *App {
	a.clipboard = s
	return a
}

// WithStore replaces the saved output store
func (a *App) WithStore(s *output.Store) *App {
	a.store = s
	return a
}

// Store returns the saved output store
func (a *App) Store() *output.Store {
	return a.store
}

// Match resolves name and lists the files it selects, without reading them
func (a *App) Match(ctx context.Context, name string) (*Match, error) {
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	def, err := a.cfg.Require(name)
	if err != nil {
		return nil, err
	}

	set, err := resolve.New(a.cfg).WithLogger(a.logger).Resolve(name)
	if err != nil {
		return nil, err
	}
	set = set.Dedupe()

	if set.Empty() {
		return nil, qerr.Newf(qerr.InvalidPatterns, "context %q has no patterns to match", name)
	}

	matcher, err := pattern.New(set.Patterns, set.Exclude)
	if err != nil {
		return nil, err
	}

	w, err := walker.New(a.workDir)
	if err != nil {
		return nil, err
	}
	files, err := w.WithLogger(a.logger).
		WithSkipUnreadable(a.settings.SkipUnreadable).
		WalkMatcher(ctx, "", matcher)
	if err != nil {
		return nil, err
	}

	limits := a.cfg.LimitsFor(def)
	if a.settings.MaxLines > 0 {
		limits.MaxLines = a.settings.MaxLines
	}

	return &Match{
		Name:    name,
		Base:    w.Base(),
		Context: def,
		Set:     set,
		Files:   files,
		Limits:  limits,
	}, nil
}

// Run assembles the named context and hands it to the clipboard and the saved output store.
// Only resolution, matching and assembly errors fail the run; sink failures become warnings.
func (a *App) Run(ctx context.Context, name string) (*Outcome, error) {
	m, err := a.Match(ctx, name)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Assembling context", "name", name, "files", len(m.Files), "max_lines", m.Limits.MaxLines)

	result, err := assemble.New(m.Base, m.Limits.MaxLines).
		WithLogger(a.logger).
		WithStrict(a.settings.Strict).
		Assemble(ctx, m.Files)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Match: m,
		Document: &assemble.Document{
			Name:        name,
			Description: m.Context.Description,
			Result:      result,
		},
	}

	for _, skipped := range result.Skipped {
		out.warn(fmt.Sprintf("Skipped %s: %v", skipped.Path, skipped.Err))
	}
	if result.LimitReached {
		out.warn(assemble.LimitNotice)
	}

	text := out.Document.String()

	if err := a.clipboard.Write(text); err != nil {
		a.logger.Debug("Clipboard write failed", "error", err)
		out.warn(ErrorLine(err))
	} else {
		out.Copied = !a.settings.NoClipboard
	}

	if !a.settings.NoSave {
		a.saveAndCleanup(out, name, text)
	}

	if result.TotalLines > m.Limits.WarningThreshold {
		out.warn(fmt.Sprintf("Warning: Large context (%d lines). This may impact performance.", result.TotalLines))
	}

	return out, nil
}

func (a *App) saveAndCleanup(out *Outcome, name, text string) {
	path, err := a.store.Save(name, text)
	if err != nil {
		a.logger.Debug("Saving context copy failed", "error", err)
		out.warn(ErrorLine(err))
		return
	}
	out.SavedPath = path

	report, err := a.store.Cleanup(a.cfg.Cleanup, false)
	if err != nil {
		a.logger.Debug("Cleanup failed", "error", err)
		out.warn(ErrorLine(err))
	}
	out.Cleanup = &report
}

func (o *Outcome) warn(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

// ErrorLine renders err as "Error [CODE]: message", keeping any outer wrapping in the message
func ErrorLine(err error) string {
	return fmt.Sprintf("Error [%s]: %s", qerr.CodeOf(err), err.Error())
}
