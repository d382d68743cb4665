// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for the process runner

//go:build !windows

package exec_test

import (
	"context"
	"os"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/scenepack/internal/exec"
)

func shell(script string, timeout time.Duration) exec.Command {
	return exec.Command{
		Name:    "sh",
		Path:    "sh",
		Args:    []string{"-c", script},
		Timeout: timeout,
	}
}

func TestRunnerSuccess(t *testing.T) {
	runner := exec.NewRunner(nil)

	result := runner.Run(context.Background(), shell("echo hello; echo oops >&2", 10*time.Second))

	require.True(t, result.Success(), "unexpected error: %v", result.Error)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, "oops\n", result.Stderr)
}

func TestRunnerNonZeroExit(t *testing.T) {
	runner := exec.NewRunner(nil)

	result := runner.Run(context.Background(), shell("exit 3", 10*time.Second))

	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "exited with code 3")
}

func TestRunnerTimeout(t *testing.T) {
	runner := exec.NewRunner(nil)

	result := runner.Run(context.Background(), shell("sleep 10", 200*time.Millisecond))

	assert.False(t, result.Success())
	assert.True(t, result.TimedOut)
	assert.Less(t, result.Duration, 8*time.Second)
}

func TestRunnerTimeoutStopsHelpers(t *testing.T) {
	runner := exec.NewRunner(nil)

	// the helper does not hold the output pipes, so only the group signal can stop it
	result := runner.Run(context.Background(),
		shell("sleep 30 >/dev/null 2>&1 & echo $!; wait", 300*time.Millisecond))
	require.True(t, result.TimedOut)

	pid, err := strconv.Atoi(strings.TrimSpace(result.Stdout))
	require.NoError(t, err, "stdout: %q", result.Stdout)
	assert.Eventually(t, func() bool { return stopped(pid) },
		5*time.Second, 50*time.Millisecond, "helper %d still running", pid)
}

// stopped reports whether pid is gone or a zombie waiting for its reaper
func stopped(pid int) bool {
	if syscall.Kill(pid, 0) == syscall.ESRCH {
		return true
	}
	stat, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return false
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func TestRunnerLaunchFailure(t *testing.T) {
	runner := exec.NewRunner(nil)

	result := runner.Run(context.Background(), exec.Command{
		Name: "missing",
		Path: "/nonexistent/definitely-not-a-tool",
	})

	assert.False(t, result.Success())
	require.Error(t, result.Error)
	assert.Equal(t, -1, result.ExitCode)
}

func TestRunnerCancelled(t *testing.T) {
	runner := exec.NewRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	result := runner.Run(ctx, shell("sleep 10", 0))

	assert.False(t, result.Success())
	assert.False(t, result.TimedOut)
}

func TestEffectiveTimeout(t *testing.T) {
	tests := []struct {
		name     string
		in       time.Duration
		expected time.Duration
	}{
		{"zero disables", 0, 0},
		{"negative disables", -time.Second, 0},
		{"passes through", time.Minute, time.Minute},
		{"capped", 48 * time.Hour, exec.MaxTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exec.EffectiveTimeout(tt.in))
		})
	}
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, []string{"c", "d"}, exec.TailLines("a\nb\nc\nd\n", 2))
	assert.Nil(t, exec.TailLines("  ", 3))
}

func TestFormatResult(t *testing.T) {
	ok := exec.FormatResult("blender", &exec.CommandResult{ExitCode: 0})
	assert.Contains(t, ok, "✓")

	failed := exec.FormatResult("blender", &exec.CommandResult{ExitCode: 1})
	assert.Contains(t, failed, "✗")
}
