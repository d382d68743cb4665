// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Config tests

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
)

// isolate runs the test in an empty directory with no config file or
// SCENEPACK_* variable visible
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{
		config.EnvMapName, config.EnvEnhanceMode, config.EnvToolPath, config.EnvScriptPath,
		config.EnvGeometryDir, config.EnvTextureDir, config.EnvOutputDir, config.EnvSavesDir,
		config.EnvEnhancerPath, config.EnvUseGPU, config.EnvExportTO, config.EnvHistoryPath,
		config.EnvPublishEndpoint, config.EnvPublishBucket,
	} {
		// register restore, then unset so .env files can fill it
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLookupEnhancement(t *testing.T) {
	tests := []struct {
		mode   string
		factor int
		model  string
	}{
		{"0", 0, ""},
		{"off", 0, ""},
		{"2", 2, "RealESRGAN_x2plus"},
		{" X2 ", 2, "RealESRGAN_x2plus"},
		{"4", 4, "RealESRGAN_x4plus"},
		{"4x", 4, "RealESRGAN_x4plus"},
	}
	for _, tt := range tests {
		opt, err := config.LookupEnhancement(tt.mode)
		require.NoError(t, err, tt.mode)
		assert.Equal(t, tt.factor, opt.Factor, tt.mode)
		assert.Equal(t, tt.model, opt.ModelName, tt.mode)
	}

	for _, bad := range []string{"", "3", "8", "x8", "max"} {
		_, err := config.LookupEnhancement(bad)
		require.Error(t, err, bad)
		assert.True(t, apperrors.Is(err, apperrors.KindConfig))
	}
	assert.Equal(t, []string{"0", "2", "4"}, config.EnhancementModes())
}

func TestValidateMapName(t *testing.T) {
	for _, ok := range []string{"map", "Harbor_01", "level-2", "X"} {
		assert.NoError(t, config.ValidateMapName(ok), ok)
	}
	for _, bad := range []string{"", "my map", "../up", "map(1)", "naïve", "a/b"} {
		assert.Error(t, config.ValidateMapName(bad), bad)
	}
}

func TestLoadConfigFromPath(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, filepath.Join(dir, "scenepack.yaml"), `
map_name: harbor
enhancement:
  mode: 2
  use_gpu: false
  workers: 4
paths:
  tool: /opt/blender/blender
timeouts:
  export: 45m
snapshot:
  bundle: true
publish:
  endpoint: localhost:9000
  bucket: scenes
`)
	cfg, err := config.LoadConfigFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "harbor", cfg.MapName)
	assert.Equal(t, "2", cfg.Enhancement.Mode)
	require.NotNil(t, cfg.Enhancement.UseGPU)
	assert.False(t, *cfg.Enhancement.UseGPU)
	assert.Equal(t, 4, cfg.Enhancement.Workers)
	assert.Equal(t, "/opt/blender/blender", cfg.Paths.Tool)
	assert.Equal(t, "45m", cfg.Timeouts.Export)
	assert.True(t, cfg.Snapshot.Bundle)
	assert.True(t, cfg.Publish.Enabled())

	jsonPath := writeFile(t, filepath.Join(dir, "scenepack.json"), `{"map_name": "dock", "enhancement": {"mode": "4"}}`)
	cfg, err = config.LoadConfigFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "dock", cfg.MapName)
	assert.Equal(t, "4", cfg.Enhancement.Mode)
}

func TestLoadConfigFromPath_SchemaRejects(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"unknown key":  "colour: blue\n",
		"bad mode":     "enhancement:\n  mode: \"8\"\n",
		"bad map name": "map_name: \"my map\"\n",
		"workers zero": "enhancement:\n  workers: 0\n",
		"wrong type":   "snapshot:\n  bundle: sometimes\n",
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadConfigFromPath(writeFile(t, filepath.Join(dir, name+".yaml"), doc))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindConfig))
		})
	}

	_, err := config.LoadConfigFromPath(writeFile(t, filepath.Join(dir, "broken.json"), "{"))
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	s, err := config.Load(config.Overrides{})
	require.NoError(t, err)

	assert.Empty(t, s.Source)
	assert.Equal(t, "map", s.MapName)
	assert.Equal(t, "0", s.EnhanceMode)
	assert.Equal(t, 1, s.Workers)
	assert.Equal(t, config.DefaultExportTimeout, s.Timeouts.Export)
	assert.Equal(t, filepath.Join(dir, "input", "texture"), s.Paths.InputTextureDir)
	assert.Equal(t, filepath.Join(dir, "saves"), s.Paths.SavesDir)
	assert.Equal(t, filepath.Join(dir, "history.db"), s.HistoryPath)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".scenepack.yaml"), `
map_name: fromfile
enhancement:
  mode: "2"
  workers: 2
paths:
  output_dir: /file/output
  saves_dir: /file/saves
timeouts:
  export: 10m
`)
	t.Setenv(config.EnvEnhanceMode, "4")
	t.Setenv(config.EnvSavesDir, "/env/saves")

	s, err := config.Load(config.Overrides{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, ".scenepack.yaml", s.Source)
	assert.Equal(t, "fromfile", s.MapName)           // file over default
	assert.Equal(t, "/file/output", s.Paths.OutputDir) // file over default
	assert.Equal(t, "/env/saves", s.Paths.SavesDir)    // env over file
	assert.Equal(t, "4", s.EnhanceMode)                // env over file
	assert.Equal(t, 3, s.Workers)                      // flag over file
	assert.Equal(t, 10*time.Minute, s.Timeouts.Export)

	s, err = config.Load(config.Overrides{EnhanceMode: "0", MapName: "fromflag"})
	require.NoError(t, err)
	assert.Equal(t, "0", s.EnhanceMode) // flag over env
	assert.Equal(t, "fromflag", s.MapName)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "SCENEPACK_MAP_NAME=dotenv_map\n")

	s, err := config.Load(config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "dotenv_map", s.MapName)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)

	t.Setenv(config.EnvEnhanceMode, "3")
	_, err := config.Load(config.Overrides{})
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))

	t.Setenv(config.EnvEnhanceMode, "")
	t.Setenv(config.EnvExportTO, "soon")
	_, err = config.Load(config.Overrides{})
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))

	t.Setenv(config.EnvExportTO, "")
	t.Setenv(config.EnvUseGPU, "maybe")
	_, err = config.Load(config.Overrides{})
	assert.True(t, apperrors.Is(err, apperrors.KindConfig))
}

func TestSettings_SetMapNameOnce(t *testing.T) {
	s := config.Defaults(t.TempDir())

	require.Error(t, s.SetMapName("bad name"))
	require.NoError(t, s.SetMapName("harbor"))
	err := s.SetMapName("dock")
	require.Error(t, err)
	assert.Equal(t, "harbor", s.MapName)
}

func TestSettings_RunConfig(t *testing.T) {
	root := t.TempDir()
	s := config.Defaults(root)
	s.EnhanceMode = "x4"
	s.Workers = 0
	require.NoError(t, s.SetMapName("harbor"))

	cfg, err := s.RunConfig(true)
	require.NoError(t, err)

	assert.Equal(t, "harbor", cfg.MapName)
	assert.True(t, cfg.Enhancement.Enabled)
	assert.Equal(t, 4, cfg.Enhancement.Factor)
	assert.Equal(t, "RealESRGAN_x4plus", cfg.Enhancement.ModelRef)
	assert.Equal(t, []string{
		filepath.Join(root, "models", "RealESRGAN_x4plus.param"),
		filepath.Join(root, "models", "RealESRGAN_x4plus.bin"),
	}, cfg.Enhancement.ModelFiles())
	assert.Equal(t, 1, cfg.Enhancement.Workers)
	assert.True(t, cfg.Snapshot.Save)
	assert.Equal(t, "harbor", cfg.Snapshot.Name)

	// the snapshot is a copy
	s.Paths.OutputDir = "/elsewhere"
	assert.Equal(t, filepath.Join(root, "output"), cfg.Paths.OutputDir)
}

func TestRunConfig_Validate(t *testing.T) {
	s := config.Defaults(t.TempDir())
	valid, err := s.RunConfig(true)
	require.NoError(t, err)

	tests := map[string]func(*config.RunConfig){
		"empty output":      func(c *config.RunConfig) { c.Paths.OutputDir = "" },
		"empty tool":        func(c *config.RunConfig) { c.Paths.ExternalToolPath = " " },
		"saves missing":     func(c *config.RunConfig) { c.Paths.SavesDir = "" },
		"bad snapshot name": func(c *config.RunConfig) { c.Snapshot.Name = "a b" },
		"bad factor":        func(c *config.RunConfig) { c.Enhancement.Factor = 3; c.Enhancement.Enabled = true },
		"enabled mismatch":  func(c *config.RunConfig) { c.Enhancement.Enabled = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindConfig))
		})
	}

	noSave := valid
	noSave.Snapshot.Save = false
	noSave.Paths.SavesDir = ""
	assert.NoError(t, noSave.Validate())
}

func TestRunConfig_ValidateOutputHoldsKeptDirs(t *testing.T) {
	root := t.TempDir()
	s := config.Defaults(root)
	valid, err := s.RunConfig(false)
	require.NoError(t, err)
	output := valid.Paths.OutputDir

	tests := map[string]func(*config.Paths){
		"saves inside output":    func(p *config.Paths) { p.SavesDir = filepath.Join(output, "saves") },
		"saves equal output":     func(p *config.Paths) { p.SavesDir = output },
		"templates inside":       func(p *config.Paths) { p.TemplatesDir = filepath.Join(output, "templates") },
		"geometry inside":        func(p *config.Paths) { p.InputGeometryDir = filepath.Join(output, "in") },
		"textures deep inside":   func(p *config.Paths) { p.InputTextureDir = filepath.Join(output, "in", "texture") },
		"output is the root":     func(p *config.Paths) { p.OutputDir = root },
		"relative saves in root": func(p *config.Paths) { p.OutputDir = "."; p.SavesDir = "saves" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg.Paths)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindConfig))
		})
	}

	// siblings sharing a name prefix are fine
	sibling := valid
	sibling.Paths.SavesDir = output + "-saves"
	assert.NoError(t, sibling.Validate())

	// the saves directory is checked even when no snapshot is requested
	nested := valid
	nested.Snapshot.Save = false
	nested.Paths.SavesDir = filepath.Join(output, "saves")
	assert.Error(t, nested.Validate())
}
