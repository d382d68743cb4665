// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Settings resolution with precedence: CLI > ENV > config file > defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

// Environment variable names
const (
	EnvMapName      = "SCENEPACK_MAP_NAME"
	EnvEnhanceMode  = "SCENEPACK_ENHANCE_MODE"
	EnvToolPath     = "SCENEPACK_TOOL_PATH"
	EnvScriptPath   = "SCENEPACK_SCRIPT_PATH"
	EnvGeometryDir  = "SCENEPACK_GEOMETRY_DIR"
	EnvTextureDir   = "SCENEPACK_TEXTURE_DIR"
	EnvOutputDir    = "SCENEPACK_OUTPUT_DIR"
	EnvSavesDir     = "SCENEPACK_SAVES_DIR"
	EnvEnhancerPath = "SCENEPACK_ENHANCER_PATH"
	EnvUseGPU       = "SCENEPACK_USE_GPU"
	EnvExportTO     = "SCENEPACK_EXPORT_TIMEOUT"
	EnvHistoryPath  = "SCENEPACK_HISTORY_PATH"

	EnvPublishEndpoint  = "SCENEPACK_PUBLISH_ENDPOINT"
	EnvPublishRegion    = "SCENEPACK_PUBLISH_REGION"
	EnvPublishAccessKey = "SCENEPACK_PUBLISH_ACCESS_KEY"
	EnvPublishSecretKey = "SCENEPACK_PUBLISH_SECRET_KEY"
	EnvPublishBucket    = "SCENEPACK_PUBLISH_BUCKET"
	EnvPublishUseSSL    = "SCENEPACK_PUBLISH_USE_SSL"
)

// Default timeout for the authoring tool
const DefaultExportTimeout = 30 * time.Minute

// Default timeout per enhanced texture
const DefaultEnhanceTimeout = 5 * time.Minute

// Settings is the resolved, still-editable configuration.
// RunConfig takes the immutable snapshot handed to the pipeline.
type Settings struct {
	MapName      string
	EnhanceMode  string
	UseGPU       bool
	TileSize     int
	Workers      int
	EnhancerPath string
	ModelsDir    string
	Paths        Paths
	Timeouts     Timeouts
	Bundle       bool
	HistoryPath  string
	Publish      PublishConfig
	Source       string // config file used, empty if none

	mapNameLocked bool
}

// Overrides carries CLI flag values; zero values mean "not set"
type Overrides struct {
	ConfigPath  string
	MapName     string
	EnhanceMode string
	Workers     int
	Bundle      bool
}

// Defaults returns settings rooted at projectRoot
func Defaults(projectRoot string) *Settings {
	return &Settings{
		MapName:      DefaultMapName,
		EnhanceMode:  "0",
		UseGPU:       true,
		Workers:      1,
		EnhancerPath: "realesrgan-ncnn-vulkan",
		ModelsDir:    filepath.Join(projectRoot, "models"),
		Paths: Paths{
			InputGeometryDir: filepath.Join(projectRoot, "input"),
			InputTextureDir:  filepath.Join(projectRoot, "input", "texture"),
			OutputDir:        filepath.Join(projectRoot, "output"),
			TemplatesDir:     filepath.Join(projectRoot, "templates"),
			SavesDir:         filepath.Join(projectRoot, "saves"),
			ExternalToolPath: defaultToolPath(),
			ExportScriptPath: filepath.Join(projectRoot, "scripts", "export_scene.py"),
		},
		Timeouts: Timeouts{
			Export:  DefaultExportTimeout,
			Enhance: DefaultEnhanceTimeout,
		},
		HistoryPath: filepath.Join(projectRoot, "history.db"),
	}
}

func defaultToolPath() string {
	if runtime.GOOS == "windows" {
		return "C:/Program Files/Blender Foundation/Blender 4.1/blender.exe"
	}
	return "blender"
}

// Load resolves settings from defaults, config file, .env/environment and flags
func Load(overrides Overrides) (*Settings, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	s := Defaults(cwd)

	var fileCfg *FileConfig
	if overrides.ConfigPath != "" {
		fileCfg, err = LoadConfigFromPath(overrides.ConfigPath)
		if err != nil {
			return nil, err
		}
		s.Source = overrides.ConfigPath
	} else {
		var path string
		fileCfg, path, err = LoadConfigFile()
		if err != nil {
			return nil, err
		}
		s.Source = path
	}

	if fileCfg != nil {
		if err := s.applyFile(fileCfg); err != nil {
			return nil, err
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	s.applyOverrides(overrides)

	if _, err := LookupEnhancement(s.EnhanceMode); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyFile(f *FileConfig) error {
	if f.MapName != "" {
		s.MapName = f.MapName
	}

	e := f.Enhancement
	if e.Mode != "" {
		s.EnhanceMode = e.Mode
	}
	if e.UseGPU != nil {
		s.UseGPU = *e.UseGPU
	}
	if e.TileSize > 0 {
		s.TileSize = e.TileSize
	}
	if e.Workers > 0 {
		s.Workers = e.Workers
	}
	if e.EnhancerPath != "" {
		s.EnhancerPath = e.EnhancerPath
	}
	if e.ModelsDir != "" {
		s.ModelsDir = e.ModelsDir
	}

	p := f.Paths
	setIfNotEmpty(&s.Paths.ExternalToolPath, p.Tool)
	setIfNotEmpty(&s.Paths.ExportScriptPath, p.Script)
	setIfNotEmpty(&s.Paths.InputGeometryDir, p.GeometryDir)
	setIfNotEmpty(&s.Paths.InputTextureDir, p.TextureDir)
	setIfNotEmpty(&s.Paths.OutputDir, p.OutputDir)
	setIfNotEmpty(&s.Paths.TemplatesDir, p.TemplatesDir)
	setIfNotEmpty(&s.Paths.SavesDir, p.SavesDir)

	if f.Timeouts.Export != "" {
		d, err := parseTimeout("timeouts.export", f.Timeouts.Export)
		if err != nil {
			return err
		}
		s.Timeouts.Export = d
	}
	if f.Timeouts.Enhance != "" {
		d, err := parseTimeout("timeouts.enhance", f.Timeouts.Enhance)
		if err != nil {
			return err
		}
		s.Timeouts.Enhance = d
	}

	s.Bundle = f.Snapshot.Bundle
	setIfNotEmpty(&s.HistoryPath, f.History.Path)
	s.Publish = f.Publish
	return nil
}

func (s *Settings) applyEnv() error {
	setIfNotEmpty(&s.MapName, env(EnvMapName))
	setIfNotEmpty(&s.EnhanceMode, env(EnvEnhanceMode))
	setIfNotEmpty(&s.Paths.ExternalToolPath, env(EnvToolPath))
	setIfNotEmpty(&s.Paths.ExportScriptPath, env(EnvScriptPath))
	setIfNotEmpty(&s.Paths.InputGeometryDir, env(EnvGeometryDir))
	setIfNotEmpty(&s.Paths.InputTextureDir, env(EnvTextureDir))
	setIfNotEmpty(&s.Paths.OutputDir, env(EnvOutputDir))
	setIfNotEmpty(&s.Paths.SavesDir, env(EnvSavesDir))
	setIfNotEmpty(&s.EnhancerPath, env(EnvEnhancerPath))
	setIfNotEmpty(&s.HistoryPath, env(EnvHistoryPath))

	if raw := env(EnvUseGPU); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewConfig(fmt.Sprintf("%s: %v", EnvUseGPU, err))
		}
		s.UseGPU = v
	}
	if raw := env(EnvExportTO); raw != "" {
		d, err := parseTimeout(EnvExportTO, raw)
		if err != nil {
			return err
		}
		s.Timeouts.Export = d
	}

	setIfNotEmpty(&s.Publish.Endpoint, env(EnvPublishEndpoint))
	setIfNotEmpty(&s.Publish.Region, env(EnvPublishRegion))
	setIfNotEmpty(&s.Publish.AccessKey, env(EnvPublishAccessKey))
	setIfNotEmpty(&s.Publish.SecretKey, env(EnvPublishSecretKey))
	setIfNotEmpty(&s.Publish.Bucket, env(EnvPublishBucket))
	if raw := env(EnvPublishUseSSL); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			s.Publish.UseSSL = v
		}
	}
	return nil
}

func (s *Settings) applyOverrides(o Overrides) {
	if o.MapName != "" {
		s.MapName = o.MapName
	}
	if o.EnhanceMode != "" {
		s.EnhanceMode = o.EnhanceMode
	}
	if o.Workers > 0 {
		s.Workers = o.Workers
	}
	if o.Bundle {
		s.Bundle = true
	}
}

// SetMapName sets the map name for this run. It may be called once.
func (s *Settings) SetMapName(name string) error {
	if s.mapNameLocked {
		return apperrors.NewConfig("map name already set for this run")
	}
	if err := ValidateMapName(name); err != nil {
		return err
	}
	s.MapName = name
	s.mapNameLocked = true
	return nil
}

// RunConfig takes the immutable snapshot for one run
func (s *Settings) RunConfig(saveSnapshot bool) (RunConfig, error) {
	opt, err := LookupEnhancement(s.EnhanceMode)
	if err != nil {
		return RunConfig{}, err
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	cfg := RunConfig{
		MapName: s.MapName,
		Enhancement: Enhancement{
			Enabled:      opt.Factor > 0,
			Mode:         opt.Mode,
			Factor:       opt.Factor,
			ModelRef:     opt.ModelName,
			Description:  opt.Description,
			UseGPU:       s.UseGPU,
			TileSize:     s.TileSize,
			Workers:      workers,
			EnhancerPath: s.EnhancerPath,
			ModelsDir:    s.ModelsDir,
		},
		Paths:    s.Paths,
		Timeouts: s.Timeouts,
		Snapshot: SnapshotOptions{
			Save:   saveSnapshot,
			Name:   s.MapName,
			Bundle: s.Bundle,
		},
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func parseTimeout(name, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewConfig(fmt.Sprintf("%s: %v", name, err))
	}
	if d < 0 {
		return 0, apperrors.NewConfig(fmt.Sprintf("%s: negative timeout", name))
	}
	return d, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setIfNotEmpty(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = value
	}
}
