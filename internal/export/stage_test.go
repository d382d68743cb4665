// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for the scene export stage

package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/exec"
	"github.com/sony-level/scenepack/internal/export"
	"github.com/sony-level/scenepack/internal/workspace"
)

func exportConfig() config.RunConfig {
	return config.RunConfig{
		MapName: "harbor",
		Paths: config.Paths{
			InputGeometryDir: "/in",
			InputTextureDir:  "/in/texture",
			OutputDir:        "/out",
			ExternalToolPath: "/usr/bin/blender",
			ExportScriptPath: "/scripts/export_scene.py",
		},
		Timeouts: config.Timeouts{Export: time.Minute},
	}
}

func TestCommand(t *testing.T) {
	cmd := export.Command(exportConfig(), workspace.Open("/out", "harbor"))

	assert.Equal(t, "/usr/bin/blender", cmd.Path)
	assert.Equal(t, time.Minute, cmd.Timeout)
	assert.Equal(t, []string{
		"--background", "--python", "/scripts/export_scene.py", "--",
		"/in", "/in/texture", "/out/meshes", "harbor",
	}, cmd.Args)
}

func TestRun_Success(t *testing.T) {
	calls := 0
	runner := exec.RunnerFunc(func(context.Context, exec.Command) *exec.CommandResult {
		calls++
		return &exec.CommandResult{ExitCode: 0}
	})

	result, err := export.NewStage(runner, nil).Run(context.Background(), exportConfig(), workspace.Open("/out", "harbor"))
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, 1, calls)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name   string
		result *exec.CommandResult
		want   string
	}{
		{"nonzero exit without error", &exec.CommandResult{ExitCode: 1}, "exited with code 1"},
		{"timeout", &exec.CommandResult{ExitCode: -1, TimedOut: true, Error: errors.New("blender timed out after 1m0s")}, "timed out"},
		{"launch failure", &exec.CommandResult{ExitCode: -1, Error: errors.New("failed to start blender")}, "failed to start"},
		{"no result", nil, "no result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := exec.RunnerFunc(func(context.Context, exec.Command) *exec.CommandResult { return tt.result })
			_, err := export.NewStage(runner, nil).Run(context.Background(), exportConfig(), workspace.Open("/out", "harbor"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
