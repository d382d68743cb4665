// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Execution types and interfaces

package exec

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MaxTimeout caps any single external invocation
const MaxTimeout = 6 * time.Hour

// Command describes one external process invocation
type Command struct {
	Name    string   // label used in logs, e.g. "blender"
	Path    string   // executable
	Args    []string // positional arguments
	Dir     string   // working directory, empty for current
	Timeout time.Duration
}

// String renders the command line for logs
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	return strings.Join(parts, " ")
}

// CommandResult contains the raw result of running a command
type CommandResult struct {
	ExitCode int
	Duration time.Duration
	Stdout   string
	Stderr   string
	TimedOut bool
	Error    error
}

// Success reports a clean zero exit
func (r *CommandResult) Success() bool {
	return r != nil && r.Error == nil && r.ExitCode == 0
}

// ProcessRunner is the capability to launch an external process and wait for it.
// Fakes implement it in tests so no real tool is needed.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) *CommandResult
}

// RunnerFunc adapts a function to ProcessRunner
type RunnerFunc func(ctx context.Context, cmd Command) *CommandResult

func (f RunnerFunc) Run(ctx context.Context, cmd Command) *CommandResult {
	return f(ctx, cmd)
}

// EffectiveTimeout clamps a requested timeout to MaxTimeout; zero stays zero
func EffectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if timeout > MaxTimeout {
		return MaxTimeout
	}
	return timeout
}

// FormatResult returns a one-line summary of a command result
func FormatResult(name string, result *CommandResult) string {
	if result == nil {
		return fmt.Sprintf("✗ %s: no result", name)
	}
	if result.Success() {
		return fmt.Sprintf("✓ %s: Success (%v)", name, result.Duration.Round(time.Millisecond))
	}
	reason := "failed"
	if result.Error != nil {
		reason = result.Error.Error()
	}
	return fmt.Sprintf("✗ %s: Failed - %s (%v)", name, reason, result.Duration.Round(time.Millisecond))
}
