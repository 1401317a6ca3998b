// Package assemble reads matched files and renders them into a single
// line-budgeted text document.
package assemble

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chriscorrea/qctx/internal/logger"
	"github.com/chriscorrea/qctx/internal/qerr"
)

// LimitNotice is reported once when the budget cuts the document short
const LimitNotice = "Reached line limit. Some files may be omitted."

// Skipped is a matched file that could not be read
type Skipped struct {
	Path string
	Err  error
}

// Result is the assembled body plus what happened while building it
type Result struct {
	Body         string
	TotalLines   int
	Included     []string // files with a block in Body, in order
	Truncated    string   // the file cut short by the budget, if any
	LimitReached bool
	Omitted      int // files dropped after the budget ran out
	Skipped      []Skipped
}

// Assembler concatenates file contents under a line budget
type Assembler struct {
	base     string
	maxLines int
	strict   bool
	workers  int
	logger   *slog.Logger
}

// New creates an Assembler that reads paths relative to base.
// A non-positive maxLines leaves nothing to include.
func New(base string, maxLines int) *Assembler {
	return &Assembler{
		base:     base,
		maxLines: maxLines,
		workers:  runtime.GOMAXPROCS(0) * 4,
		logger:   logger.Discard(),
	}
}

// WithLogger sets the logger for the assembler
func (a *Assembler) WithLogger(l *slog.Logger) *Assembler {
	a.logger = logger.OrDiscard(l)
	return a
}

// WithStrict makes the first unreadable file abort assembly with FILE_READ_ERROR
func (a *Assembler) WithStrict(strict bool) *Assembler {
	a.strict = strict
	return a
}

// WithWorkers bounds the number of concurrent file reads
func (a *Assembler) WithWorkers(n int) *Assembler {
	if n > 0 {
		a.workers = n
	}
	return a
}

type fileContent struct {
	lines []string
	err   error
}

// Assemble reads files concurrently and renders them in the given order.
//
// Budget decisions are made sequentially: a file that does not fit in the
// remaining budget is cut to exactly the remaining number of lines, followed
// by a "... (K more lines)" marker that does not count against the budget,
// and nothing after it is included.
func (a *Assembler) Assemble(ctx context.Context, files []string) (*Result, error) {
	contents, err := a.readAll(ctx, files)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var body strings.Builder

	for i, path := range files {
		c := contents[i]
		if c.err != nil {
			a.logger.Debug("Skipping unreadable file", "path", path, "error", c.err)
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: c.err})
			continue
		}

		remaining := a.maxLines - result.TotalLines
		if remaining <= 0 {
			result.LimitReached = true
			result.Omitted = a.countReadable(files[i:], contents[i:])
			break
		}

		lines := c.lines
		omitted := 0
		if len(lines) > remaining {
			omitted = len(lines) - remaining
			lines = lines[:remaining]
		}

		writeBlock(&body, path, lines, omitted)
		result.TotalLines += len(lines)
		result.Included = append(result.Included, path)

		if omitted > 0 {
			a.logger.Debug("Truncated file to fit line budget", "path", path, "kept", len(lines), "omitted", omitted)
			result.Truncated = path
			result.LimitReached = true
			result.Omitted = a.countReadable(files[i+1:], contents[i+1:])
			break
		}
	}

	result.Body = body.String()
	a.logger.Debug("Assembled document", "files", len(result.Included), "lines", result.TotalLines,
		"omitted", result.Omitted, "skipped", len(result.Skipped))
	return result, nil
}

func (a *Assembler) readAll(ctx context.Context, files []string) ([]fileContent, error) {
	contents := make([]fileContent, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := os.ReadFile(a.resolve(path))
			if err != nil {
				readErr := qerr.Wrap(qerr.FileRead, err, fmt.Sprintf("error reading file %s", path))
				if a.strict {
					return readErr
				}
				contents[i] = fileContent{err: readErr}
				return nil
			}

			contents[i] = fileContent{lines: SplitLines(string(data))}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}

func (a *Assembler) resolve(path string) string {
	native := filepath.FromSlash(path)
	if filepath.IsAbs(native) || a.base == "" {
		return native
	}
	return filepath.Join(a.base, native)
}

// countReadable counts files that would have produced a block
func (a *Assembler) countReadable(files []string, contents []fileContent) int {
	n := 0
	for i := range files {
		if contents[i].err == nil {
			n++
		}
	}
	return n
}

// SplitLines splits content into lines, ignoring one trailing newline.
// Empty content has no lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// writeBlock renders "--- path ---", a blank line, the content and a trailing blank line
func writeBlock(b *strings.Builder, path string, lines []string, omitted int) {
	fmt.Fprintf(b, "--- %s ---\n\n", path)
	b.WriteString(strings.Join(lines, "\n"))
	if omitted > 0 {
		if len(lines) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(TruncationMarker(omitted))
	}
	b.WriteString("\n\n")
}

// TruncationMarker is the line appended to a file cut short by the budget
func TruncationMarker(omitted int) string {
	return fmt.Sprintf("... (%d more lines)", omitted)
}
