package app

import (
	"context"
	"errors"

	"github.com/chriscorrea/qctx/internal/qerr"
)

// process exit codes, grouped by the kind of failure
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitResolve    = 2 // the context could not be resolved or matched
	ExitFilesystem = 3 // reading the tree or writing config failed
	ExitConfig     = 4
	ExitInput      = 5 // the user supplied something unusable
	ExitGit        = 6
	ExitCancelled  = 130
)

var exitCodes = map[qerr.Code]int{
	qerr.ContextNotFound:    ExitResolve,
	qerr.CircularDependency: ExitResolve,
	qerr.InvalidPatterns:    ExitResolve,
	qerr.NoContext:          ExitResolve,

	qerr.DirRead:    ExitFilesystem,
	qerr.FileRead:   ExitFilesystem,
	qerr.DirCreate:  ExitFilesystem,
	qerr.FileSave:   ExitFilesystem,
	qerr.ConfigSave: ExitFilesystem,
	qerr.Cleanup:    ExitFilesystem,
	qerr.Clipboard:  ExitFilesystem,

	qerr.EmptyConfig:         ExitConfig,
	qerr.InvalidConfigFormat: ExitConfig,

	qerr.EmptyContextName: ExitInput,
	qerr.NoPatterns:       ExitInput,

	qerr.Git: ExitGit,
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}
	if code, ok := exitCodes[qerr.CodeOf(err)]; ok {
		return code
	}
	return ExitGeneral
}
