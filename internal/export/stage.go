// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Scene export through the headless authoring tool

package export

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/exec"
	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/workspace"
)

// Stage invokes the authoring tool to import, clean and export the scene
type Stage struct {
	runner exec.ProcessRunner
	logger *zap.Logger
}

// NewStage creates an export stage
func NewStage(runner exec.ProcessRunner, logger *zap.Logger) *Stage {
	return &Stage{runner: runner, logger: logging.OrNop(logger)}
}

// Command builds the authoring tool invocation:
//
//	<tool> --background --python <script> -- <geometryDir> <textureDir> <meshesDir> <mapName>
func Command(cfg config.RunConfig, ws *workspace.Workspace) exec.Command {
	return exec.Command{
		Name: "blender",
		Path: cfg.Paths.ExternalToolPath,
		Args: []string{
			"--background",
			"--python", cfg.Paths.ExportScriptPath,
			"--",
			cfg.Paths.InputGeometryDir,
			cfg.Paths.InputTextureDir,
			ws.MeshesPath(),
			cfg.MapName,
		},
		Timeout: cfg.Timeouts.Export,
	}
}

// Run exports the scene into the workspace meshes directory.
// Any result other than a clean zero exit is an error.
func (s *Stage) Run(ctx context.Context, cfg config.RunConfig, ws *workspace.Workspace) (*exec.CommandResult, error) {
	cmd := Command(cfg, ws)
	s.logger.Debug("exporting scene", zap.String("cmd", cmd.String()))

	result := s.runner.Run(ctx, cmd)
	if result == nil {
		return nil, fmt.Errorf("%s: no result", cmd.Name)
	}
	s.logger.Info(exec.FormatResult(cmd.Name, result))
	if result.Success() {
		return result, nil
	}

	err := result.Error
	if err == nil {
		err = fmt.Errorf("%s exited with code %d", cmd.Name, result.ExitCode)
	}
	if tail := exec.TailLines(result.Stderr, 5); len(tail) > 0 {
		s.logger.Warn("authoring tool output", zap.String("stderr", strings.Join(tail, "\n")))
	}
	return result, err
}
