// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Main workspace logic

package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/logging"
)

// Manager owns the output directory tree
type Manager struct {
	logger *zap.Logger
}

// NewManager creates a workspace manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logging.OrNop(logger)}
}

// Open returns the workspace at outputDir without touching it
func Open(outputDir, mapName string) *Workspace {
	return &Workspace{Path: outputDir, MapName: mapName}
}

// Reset discards the previous workspace and recreates it with an empty
// meshes directory and the rendered templates. Any error leaves the
// workspace in an unknown state and must be treated as fatal.
func (m *Manager) Reset(cfg config.RunConfig) (*Workspace, error) {
	outputDir := cfg.Paths.OutputDir
	if err := validateResetTarget(outputDir); err != nil {
		return nil, err
	}

	ws := Open(outputDir, cfg.MapName)

	if ws.Exists() {
		m.logger.Debug("removing previous workspace", zap.String("path", outputDir))
		if err := os.RemoveAll(outputDir); err != nil {
			return nil, apperrors.NewIO(fmt.Sprintf("failed to remove workspace %s", outputDir), err)
		}
	} else if _, err := os.Lstat(outputDir); err == nil {
		return nil, apperrors.NewIO(fmt.Sprintf("%s exists and is not a directory", outputDir), nil)
	}

	if err := os.MkdirAll(ws.MeshesPath(), 0755); err != nil {
		return nil, apperrors.NewIO(fmt.Sprintf("failed to create %s", ws.MeshesPath()), err)
	}

	for _, name := range TemplateNames() {
		src := filepath.Join(cfg.Paths.TemplatesDir, name)
		dst := filepath.Join(outputDir, Templates[name])
		if err := renderTemplate(src, dst, cfg.MapName); err != nil {
			return nil, apperrors.NewIO(fmt.Sprintf("failed to render %s", name), err)
		}
	}

	m.logger.Debug("workspace ready", zap.String("path", outputDir), zap.String("map", cfg.MapName))
	return ws, nil
}

// renderTemplate copies src to dst replacing every map-name token
func renderTemplate(src, dst, mapName string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	content := strings.ReplaceAll(string(data), config.MapNameToken, mapName)
	return os.WriteFile(dst, []byte(content), 0644)
}

// validateResetTarget refuses paths whose removal would be catastrophic
func validateResetTarget(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return apperrors.NewIO("output directory is empty", nil)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return apperrors.NewIO("failed to resolve output directory", err)
	}
	if filepath.Dir(abs) == abs {
		return apperrors.NewIO(fmt.Sprintf("refusing to reset filesystem root %s", abs), nil)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == abs {
		return apperrors.NewIO(fmt.Sprintf("refusing to reset home directory %s", abs), nil)
	}
	return nil
}

// TemplateNames returns the template file names in order
func TemplateNames() []string {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MeshesPath returns the directory the authoring tool exports into
func (w *Workspace) MeshesPath() string {
	return filepath.Join(w.Path, MeshesSubdir)
}

// ConfigFile returns the rendered model.config path
func (w *Workspace) ConfigFile() string {
	return filepath.Join(w.Path, ModelConfigFile)
}

// SDFFile returns the rendered model.sdf path
func (w *Workspace) SDFFile() string {
	return filepath.Join(w.Path, ModelSDFFile)
}

// Descriptors lists scene descriptors directly under meshes/, sorted by name
func (w *Workspace) Descriptors() ([]string, error) {
	return FindDescriptors(w.MeshesPath())
}

// FindDescriptors lists *.dae files directly under dir, sorted by name.
// A missing directory yields no descriptors.
func FindDescriptors(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), DescriptorExt) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Exists checks if the workspace directory exists
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.Path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// String returns a string representation of the workspace
func (w *Workspace) String() string {
	return fmt.Sprintf("Workspace{Map: %s, Path: %s}", w.MapName, w.Path)
}
