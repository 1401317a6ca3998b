// Package qerr defines the coded errors surfaced to qctx users.
//
// Every error that should reach the user with a stable code is an *Error.
// Codes compare with errors.Is, so callers can write
//
//	if errors.Is(err, qerr.ContextNotFound) { ... }
//
// regardless of how many times the error was wrapped with fmt.Errorf.
package qerr

import (
	"errors"
	"fmt"
)

// Code is a stable, user-facing error identifier
type Code string

// resolution and matching
const (
	InvalidPatterns    Code = "INVALID_PATTERNS"
	DirRead            Code = "DIR_READ_ERROR"
	FileRead           Code = "FILE_READ_ERROR"
	ContextNotFound    Code = "CONTEXT_NOT_FOUND"
	CircularDependency Code = "CIRCULAR_DEPENDENCY"
	NoContext          Code = "NO_CONTEXT"
)

// configuration and persistence
const (
	EmptyConfig         Code = "EMPTY_CONFIG"
	InvalidConfigFormat Code = "INVALID_CONFIG_FORMAT"
	ConfigSave          Code = "CONFIG_SAVE_ERROR"
	FileSave            Code = "FILE_SAVE_ERROR"
	DirCreate           Code = "DIR_CREATE_ERROR"
	Cleanup             Code = "CLEANUP_ERROR"
	Clipboard           Code = "CLIPBOARD_ERROR"
)

// input validation and collaborators
const (
	EmptyContextName Code = "EMPTY_CONTEXT_NAME"
	NoPatterns       Code = "NO_PATTERNS"
	Git              Code = "GIT_ERROR"
	General          Code = "GENERAL_ERROR"
)

// Error implements error
func (c Code) Error() string {
	return string(c)
}

// Error carries a code, a human readable message and an optional cause
type Error struct {
	Code    Code
	Message string
	Err     error
}

// New creates a coded error
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's code or another *Error with the same code
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or General
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return General
}
