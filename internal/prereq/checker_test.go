// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for the prerequisite checker

package prereq_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/prereq"
)

func noPath(string) (string, error) { return "", errors.New("not found") }

// project lays out a complete project and returns its RunConfig
func project(t *testing.T) config.RunConfig {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"input/texture", "templates", "scripts", "models", "bin"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}
	for _, f := range []string{"templates/modelConfig.txt", "templates/modelSDF.txt", "scripts/export_scene.py", "bin/blender"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, f), []byte("x"), 0755))
	}

	return config.RunConfig{
		MapName: "map",
		Paths: config.Paths{
			InputGeometryDir: filepath.Join(root, "input"),
			InputTextureDir:  filepath.Join(root, "input", "texture"),
			OutputDir:        filepath.Join(root, "output"),
			TemplatesDir:     filepath.Join(root, "templates"),
			SavesDir:         filepath.Join(root, "saves"),
			ExternalToolPath: filepath.Join(root, "bin", "blender"),
			ExportScriptPath: filepath.Join(root, "scripts", "export_scene.py"),
		},
	}
}

func TestCheckPrerequisites_AllFound(t *testing.T) {
	cfg := project(t)

	summary := prereq.NewCheckerWithLookPath(noPath).CheckPrerequisites(cfg)

	assert.True(t, summary.AllFound)
	assert.Empty(t, summary.MissingTools)
	assert.Empty(t, summary.Warnings)
	assert.Len(t, summary.Results, 6)
}

func TestCheckPrerequisites_MissingRequired(t *testing.T) {
	cfg := project(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.TemplatesDir, "modelSDF.txt")))
	cfg.Paths.ExternalToolPath = filepath.Join(t.TempDir(), "nope", "blender")

	checker := prereq.NewCheckerWithLookPath(noPath)
	summary := checker.CheckPrerequisites(cfg)

	assert.False(t, summary.AllFound)
	assert.Equal(t, []string{"authoring tool", "template modelSDF.txt"}, summary.MissingTools)

	report := checker.FormatMissing(summary, prereq.Requirements(cfg))
	assert.Contains(t, report, "Missing prerequisites")
	assert.Contains(t, report, "template modelSDF.txt")
	assert.Contains(t, report, "Install Blender")
}

func TestCheckPrerequisites_ToolOnPath(t *testing.T) {
	cfg := project(t)
	cfg.Paths.ExternalToolPath = "blender"

	lookPath := func(name string) (string, error) {
		if name == "blender" {
			return "/usr/bin/blender", nil
		}
		return "", errors.New("not found")
	}
	summary := prereq.NewCheckerWithLookPath(lookPath).CheckPrerequisites(cfg)

	require.True(t, summary.AllFound)
	assert.Equal(t, "/usr/bin/blender", summary.Results[0].Path)
}

func TestCheckPrerequisites_EnhancementOptional(t *testing.T) {
	cfg := project(t)
	cfg.Enhancement = config.Enhancement{
		Enabled:      true,
		Mode:         "2",
		Factor:       2,
		ModelRef:     "RealESRGAN_x2plus",
		EnhancerPath: "realesrgan-ncnn-vulkan",
		ModelsDir:    filepath.Join(filepath.Dir(cfg.Paths.TemplatesDir), "models"),
	}

	checker := prereq.NewCheckerWithLookPath(noPath)
	summary := checker.CheckPrerequisites(cfg)

	assert.True(t, summary.AllFound, "optional entries never fail the check")
	assert.True(t, summary.OptionalMissing())
	assert.Equal(t, []string{
		"enhancer",
		"enhancement model RealESRGAN_x2plus.param",
		"enhancement model RealESRGAN_x2plus.bin",
	}, summary.Warnings)
	assert.Contains(t, checker.FormatMissing(summary, prereq.Requirements(cfg)), "Missing optional components")
}

func TestCheckRequirement_Kinds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	checker := prereq.NewCheckerWithLookPath(noPath)

	assert.False(t, checker.CheckRequirement(prereq.Requirement{Name: "d", Path: file, Kind: prereq.KindDir}).Found)
	assert.False(t, checker.CheckRequirement(prereq.Requirement{Name: "f", Path: dir, Kind: prereq.KindFile}).Found)
	assert.False(t, checker.CheckRequirement(prereq.Requirement{Name: "e", Path: "", Kind: prereq.KindFile}).Found)
	assert.True(t, checker.CheckRequirement(prereq.Requirement{Name: "d", Path: dir, Kind: prereq.KindDir}).Found)
}

func TestFormatMissing_Empty(t *testing.T) {
	summary := prereq.NewCheckSummary()
	assert.Empty(t, prereq.NewChecker().FormatMissing(summary, nil))
}

// the repository ships the export script and templates the defaults point at
func TestRequirements_ShippedDefaults(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	s := config.Defaults(root)
	require.NoError(t, s.SetMapName("map"))
	cfg, err := s.RunConfig(false)
	require.NoError(t, err)

	checker := prereq.NewCheckerWithLookPath(noPath)
	for _, req := range prereq.Requirements(cfg) {
		if req.Kind != prereq.KindFile {
			continue
		}
		result := checker.CheckRequirement(req)
		assert.True(t, result.Found, "%s not shipped at %s", req.Name, req.Path)
	}
}
