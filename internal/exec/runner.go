// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// External process runner with timeout and streamed output

package exec

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/logging"
)

// maxLineSize bounds a single line of tool output
const maxLineSize = 1024 * 1024

// killGrace is how long a cancelled tool gets between SIGTERM and SIGKILL
const killGrace = 5 * time.Second

// Runner runs external processes in their own process group
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a process runner. Output lines are logged at debug level.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logging.OrNop(logger)}
}

// Run executes the command and waits for it to exit
func (r *Runner) Run(ctx context.Context, command Command) *CommandResult {
	result := &CommandResult{ExitCode: -1}
	startTime := time.Now()
	defer func() { result.Duration = time.Since(startTime) }()

	if ctx == nil {
		ctx = context.Background()
	}
	timeout := EffectiveTimeout(command.Timeout)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Dir = command.Dir
	setPlatformProcessGroup(cmd)
	cmd.Cancel = func() error { return terminateProcessGroup(cmd) }
	cmd.WaitDelay = killGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stdout pipe: %w", err)
		return result
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stderr pipe: %w", err)
		return result
	}

	log := r.logger.With(zap.String("process", command.Name))
	log.Debug("starting process", zap.String("cmd", command.String()))

	if err := cmd.Start(); err != nil {
		result.Error = fmt.Errorf("failed to start %s: %w", command.Name, err)
		return result
	}

	var stdoutBuf, stderrBuf strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		streamOutput(stdout, &stdoutBuf, log.With(zap.String("stream", "stdout")))
	}()
	go func() {
		defer wg.Done()
		streamOutput(stderr, &stderrBuf, log.With(zap.String("stream", "stderr")))
	}()
	wg.Wait()

	err = cmd.Wait()
	if ctx.Err() != nil {
		if kerr := killProcessGroup(cmd); kerr != nil {
			log.Debug("process group cleanup failed", zap.Error(kerr))
		}
	}
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result.TimedOut = true
			result.Error = fmt.Errorf("%s timed out after %v", command.Name, timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			result.Error = fmt.Errorf("%s interrupted: %w", command.Name, ctx.Err())
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
			result.Error = fmt.Errorf("%s exited with code %d", command.Name, result.ExitCode)
		default:
			result.Error = err
		}
		return result
	}

	result.ExitCode = 0
	return result
}

// streamOutput copies a pipe into buf and logs every line
func streamOutput(pipe io.Reader, buf *strings.Builder, log *zap.Logger) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteString("\n")
		log.Debug(line)
	}
}

// TailLines returns the last n lines of s
func TailLines(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" || n <= 0 {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
