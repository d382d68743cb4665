// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Workspace tests

package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/workspace"
)

func newRunConfig(t *testing.T) config.RunConfig {
	t.Helper()
	root := t.TempDir()

	templates := filepath.Join(root, "templates")
	require.NoError(t, os.MkdirAll(templates, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "modelConfig.txt"),
		[]byte("<model><name>{{MAP_NAME}}</name></model>\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(templates, "modelSDF.txt"),
		[]byte("<sdf><model name=\"{{MAP_NAME}}\"><uri>meshes/{{MAP_NAME}}.dae</uri></model></sdf>\n"), 0644))

	return config.RunConfig{
		MapName: "harbor_01",
		Paths: config.Paths{
			OutputDir:    filepath.Join(root, "output"),
			TemplatesDir: templates,
		},
	}
}

func TestReset_CreatesLayout(t *testing.T) {
	cfg := newRunConfig(t)

	ws, err := workspace.NewManager(nil).Reset(cfg)
	require.NoError(t, err)

	assert.True(t, ws.Exists())
	info, err := os.Stat(ws.MeshesPath())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	meshes, err := os.ReadDir(ws.MeshesPath())
	require.NoError(t, err)
	assert.Empty(t, meshes)

	entries, err := os.ReadDir(ws.Path)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"meshes", "model.config", "model.sdf"}, names)
}

func TestReset_SubstitutesMapName(t *testing.T) {
	cfg := newRunConfig(t)

	ws, err := workspace.NewManager(nil).Reset(cfg)
	require.NoError(t, err)

	modelConfig, err := os.ReadFile(ws.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, "<model><name>harbor_01</name></model>\n", string(modelConfig))

	sdf, err := os.ReadFile(ws.SDFFile())
	require.NoError(t, err)
	assert.NotContains(t, string(sdf), config.MapNameToken)
	assert.Contains(t, string(sdf), "meshes/harbor_01.dae")
}

func TestReset_DiscardsPreviousContents(t *testing.T) {
	cfg := newRunConfig(t)
	mgr := workspace.NewManager(nil)

	ws, err := mgr.Reset(cfg)
	require.NoError(t, err)
	stale := filepath.Join(ws.MeshesPath(), "old.dae")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ws.Path, "notes.txt"), []byte("x"), 0644))

	ws, err = mgr.Reset(cfg)
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.NoFileExists(t, filepath.Join(ws.Path, "notes.txt"))
	assert.FileExists(t, ws.ConfigFile())
}

func TestReset_MissingTemplateIsIOError(t *testing.T) {
	cfg := newRunConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.TemplatesDir, "modelSDF.txt")))

	_, err := workspace.NewManager(nil).Reset(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindIO))
}

func TestReset_RefusesRoot(t *testing.T) {
	cfg := newRunConfig(t)
	cfg.Paths.OutputDir = string(filepath.Separator)

	_, err := workspace.NewManager(nil).Reset(cfg)
	require.Error(t, err)
}

func TestReset_OutputPathIsFile(t *testing.T) {
	cfg := newRunConfig(t)
	require.NoError(t, os.WriteFile(cfg.Paths.OutputDir, []byte("not a dir"), 0644))

	_, err := workspace.NewManager(nil).Reset(cfg)
	require.Error(t, err)
}

func TestFindDescriptors(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.dae", "a.DAE", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.dae"), 0755))

	paths, err := workspace.FindDescriptors(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.DAE"), filepath.Join(dir, "b.dae")}, paths)

	none, err := workspace.FindDescriptors(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWorkspace_String(t *testing.T) {
	ws := workspace.Open("/tmp/out", "map")
	assert.Contains(t, ws.String(), "/tmp/out")
	assert.Contains(t, ws.String(), "map")
}

func TestReset_ShippedTemplates(t *testing.T) {
	templates, err := filepath.Abs(filepath.Join("..", "..", "templates"))
	require.NoError(t, err)
	cfg := config.RunConfig{
		MapName: "harbor",
		Paths: config.Paths{
			OutputDir:    filepath.Join(t.TempDir(), "output"),
			TemplatesDir: templates,
		},
	}

	ws, err := workspace.NewManager(nil).Reset(cfg)
	require.NoError(t, err)

	sdf, err := os.ReadFile(ws.SDFFile())
	require.NoError(t, err)
	assert.Contains(t, string(sdf), "model://harbor/meshes/harbor.dae")
	assert.NotContains(t, string(sdf), config.MapNameToken)

	modelConfig, err := os.ReadFile(ws.ConfigFile())
	require.NoError(t, err)
	assert.Contains(t, string(modelConfig), "<name>harbor</name>")
	assert.Contains(t, string(modelConfig), workspace.ModelSDFFile)
}
