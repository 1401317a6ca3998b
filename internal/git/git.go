// Package git lists changed and staged files to seed a context from.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/samber/lo"

	"github.com/chriscorrea/qctx/internal/qerr"
)

// Runner executes git with args in dir and returns stdout
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found on PATH
type ExecRunner struct{}

// Run executes git; stderr is folded into the error
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "git " + strings.Join(args, " ") + " failed"
		}
		return nil, qerr.Wrap(qerr.Git, err, msg)
	}
	return out, nil
}

// Client answers questions about the repository containing dir
type Client struct {
	runner Runner
	dir    string
}

// New creates a Client that runs git in dir
func New(dir string, runner Runner) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{runner: runner, dir: dir}
}

// Changed lists modified and untracked files, honouring .gitignore
func (c *Client) Changed(ctx context.Context) ([]string, error) {
	return c.list(ctx, "ls-files", "--modified", "--others", "--exclude-standard")
}

// Staged lists files in the index
func (c *Client) Staged(ctx context.Context) ([]string, error) {
	return c.list(ctx, "diff", "--staged", "--name-only")
}

func (c *Client) list(ctx context.Context, args ...string) ([]string, error) {
	out, err := c.runner.Run(ctx, c.dir, args...)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(out), "\n")
	files := lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
	// a modified file that is also untracked-listed appears once
	return lo.Uniq(files), nil
}

// ToPatterns turns repository-relative paths into "**/<file>" patterns
func ToPatterns(files []string) []string {
	return lo.Uniq(lo.Map(files, func(f string, _ int) string {
		return "**/" + strings.TrimPrefix(f, "./")
	}))
}
