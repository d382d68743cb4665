// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Run configuration types

package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

// Template placeholder substituted with the map name
const MapNameToken = "{{MAP_NAME}}"

// DefaultMapName is used when no name is given
const DefaultMapName = "map"

// RunConfig is the immutable settings snapshot for a single pipeline run.
// It is passed by value to every stage.
type RunConfig struct {
	MapName     string
	Enhancement Enhancement
	Paths       Paths
	Timeouts    Timeouts
	Snapshot    SnapshotOptions
}

// Enhancement describes the texture super-resolution step
type Enhancement struct {
	Enabled      bool
	Mode         string
	Factor       int    // 0, 2 or 4
	ModelRef     string // model name without extension, empty when disabled
	Description  string
	UseGPU       bool
	TileSize     int
	Workers      int
	EnhancerPath string // external enhancer executable
	ModelsDir    string
}

// ModelFileExts are the files the enhancer loads for one model
var ModelFileExts = []string{".param", ".bin"}

// ModelFiles returns the model files the enhancer loads, nil without a model
func (e Enhancement) ModelFiles() []string {
	if e.ModelRef == "" {
		return nil
	}
	files := make([]string, 0, len(ModelFileExts))
	for _, ext := range ModelFileExts {
		files = append(files, filepath.Join(e.ModelsDir, e.ModelRef+ext))
	}
	return files
}

// Paths groups every filesystem location the pipeline touches
type Paths struct {
	InputGeometryDir string
	InputTextureDir  string
	OutputDir        string
	TemplatesDir     string
	SavesDir         string
	ExternalToolPath string // authoring tool executable
	ExportScriptPath string // script handed to the authoring tool
}

// Timeouts bound the external process invocations. Zero disables the limit.
type Timeouts struct {
	Export  time.Duration
	Enhance time.Duration
}

// SnapshotOptions controls the optional permanent copy
type SnapshotOptions struct {
	Save   bool
	Name   string
	Bundle bool
}

// Validate checks the snapshot for values no stage can work with
func (c RunConfig) Validate() error {
	if err := ValidateMapName(c.MapName); err != nil {
		return err
	}

	required := map[string]string{
		"input geometry directory": c.Paths.InputGeometryDir,
		"input texture directory":  c.Paths.InputTextureDir,
		"output directory":         c.Paths.OutputDir,
		"templates directory":      c.Paths.TemplatesDir,
		"external tool path":       c.Paths.ExternalToolPath,
		"export script path":       c.Paths.ExportScriptPath,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return apperrors.NewConfig(name + " is empty")
		}
	}

	if err := c.Paths.checkOutputDir(); err != nil {
		return err
	}

	if c.Snapshot.Save {
		if strings.TrimSpace(c.Paths.SavesDir) == "" {
			return apperrors.NewConfig("saves directory is empty")
		}
		if err := ValidateMapName(c.Snapshot.Name); err != nil {
			return apperrors.NewConfig(fmt.Sprintf("snapshot name: %v", err))
		}
	}

	switch c.Enhancement.Factor {
	case 0, 2, 4:
	default:
		return apperrors.NewConfig(fmt.Sprintf("unsupported enhancement factor %d", c.Enhancement.Factor))
	}
	if c.Enhancement.Enabled != (c.Enhancement.Factor > 0) {
		return apperrors.NewConfig("enhancement enabled flag does not match factor")
	}

	return nil
}

// checkOutputDir rejects an output directory that holds a directory the
// workspace reset would destroy
func (p Paths) checkOutputDir() error {
	kept := []struct{ name, path string }{
		{"saves directory", p.SavesDir},
		{"templates directory", p.TemplatesDir},
		{"input geometry directory", p.InputGeometryDir},
		{"input texture directory", p.InputTextureDir},
	}
	for _, k := range kept {
		if strings.TrimSpace(k.path) == "" {
			continue
		}
		inside, err := within(p.OutputDir, k.path)
		if err != nil {
			return apperrors.New(apperrors.KindConfig, fmt.Sprintf("cannot compare output directory with %s", k.name), err)
		}
		if inside {
			return apperrors.NewConfig(fmt.Sprintf("%s %s is inside output directory %s, which is wiped on every run", k.name, k.path, p.OutputDir))
		}
	}
	return nil
}

// within reports whether path is dir or lies below it
func within(dir, path string) (bool, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		// different volumes
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// ValidateMapName accepts letters, digits, '-' and '_'
func ValidateMapName(name string) error {
	if name == "" {
		return apperrors.NewConfig("map name is empty")
	}
	for _, r := range name {
		if r == '-' || r == '_' {
			continue
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			continue
		}
		return apperrors.NewConfig(fmt.Sprintf("map name %q may only contain letters, digits, '-' and '_'", name))
	}
	return nil
}
