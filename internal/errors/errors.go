// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Error kinds shared by the pipeline stages and the exit codes they map to

package errors

import (
	"errors"
	"strings"
)

// Kind classifies a failure so callers can decide between abort and continue
type Kind string

const (
	KindConfig     Kind = "config"
	KindDependency Kind = "dependency"
	KindStage      Kind = "stage"
	KindArchive    Kind = "archive"
	KindIO         Kind = "io"
)

// Process exit codes. 1 is left for errors without a kind.
var exitCodes = map[Kind]int{
	KindConfig:     2,
	KindDependency: 3,
	KindStage:      4,
	KindIO:         5,
	KindArchive:    6,
}

// ExitCode returns the process exit code for the kind
func (k Kind) ExitCode() int {
	if code, ok := exitCodes[k]; ok {
		return code
	}
	return 1
}

// AppError is a classified failure. Message says what was being done,
// Cause is the underlying error if any.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New creates an AppError
func New(kind Kind, message string, cause error) error {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// NewConfig reports an invalid setting
func NewConfig(message string) error {
	return New(KindConfig, message, nil)
}

// NewDependency reports a missing file, tool or model
func NewDependency(message string, cause error) error {
	return New(KindDependency, message, cause)
}

// NewStage reports a pipeline stage that did not complete
func NewStage(message string, cause error) error {
	return New(KindStage, message, cause)
}

// NewArchive reports a snapshot, bundle or publish failure
func NewArchive(message string, cause error) error {
	return New(KindArchive, message, cause)
}

// NewIO reports a filesystem failure
func NewIO(message string, cause error) error {
	return New(KindIO, message, cause)
}

// KindOf returns the kind of the outermost AppError in the chain, or "" if none
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps err to a process exit code: 0 for nil, the kind's code for
// classified errors and 1 otherwise
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}
