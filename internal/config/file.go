// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Config file discovery, parsing and schema validation

package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

//go:embed schema.json
var schemaSource string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// FileConfig mirrors the on-disk configuration file
type FileConfig struct {
	MapName     string          `json:"map_name" yaml:"map_name"`
	Enhancement FileEnhancement `json:"enhancement" yaml:"enhancement"`
	Paths       FilePaths       `json:"paths" yaml:"paths"`
	Timeouts    FileTimeouts    `json:"timeouts" yaml:"timeouts"`
	Snapshot    FileSnapshot    `json:"snapshot" yaml:"snapshot"`
	History     FileHistory     `json:"history" yaml:"history"`
	Publish     PublishConfig   `json:"publish" yaml:"publish"`
}

type FileEnhancement struct {
	Mode         string `json:"mode" yaml:"mode"`
	UseGPU       *bool  `json:"use_gpu" yaml:"use_gpu"`
	TileSize     int    `json:"tile_size" yaml:"tile_size"`
	Workers      int    `json:"workers" yaml:"workers"`
	EnhancerPath string `json:"enhancer_path" yaml:"enhancer_path"`
	ModelsDir    string `json:"models_dir" yaml:"models_dir"`
}

type FilePaths struct {
	Tool         string `json:"tool" yaml:"tool"`
	Script       string `json:"script" yaml:"script"`
	GeometryDir  string `json:"geometry_dir" yaml:"geometry_dir"`
	TextureDir   string `json:"texture_dir" yaml:"texture_dir"`
	OutputDir    string `json:"output_dir" yaml:"output_dir"`
	TemplatesDir string `json:"templates_dir" yaml:"templates_dir"`
	SavesDir     string `json:"saves_dir" yaml:"saves_dir"`
}

type FileTimeouts struct {
	Export  string `json:"export" yaml:"export"` // e.g. "30m"
	Enhance string `json:"enhance" yaml:"enhance"`
}

type FileSnapshot struct {
	Bundle bool `json:"bundle" yaml:"bundle"`
}

type FileHistory struct {
	Path string `json:"path" yaml:"path"`
}

// PublishConfig points at an S3-compatible bucket for snapshot bundles
type PublishConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	Region    string `json:"region" yaml:"region"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Enabled reports whether enough is set to attempt an upload
func (p PublishConfig) Enabled() bool {
	return strings.TrimSpace(p.Endpoint) != "" && strings.TrimSpace(p.Bucket) != ""
}

// ConfigPaths returns the paths to check for config files in order
func ConfigPaths() []string {
	var paths []string

	paths = append(paths, ".scenepack.yaml", ".scenepack.yml", ".scenepack.json")

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths,
			filepath.Join(xdg, "scenepack", "config.yaml"),
			filepath.Join(xdg, "scenepack", "config.yml"),
			filepath.Join(xdg, "scenepack", "config.json"),
		)
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "scenepack", "config.yaml"),
			filepath.Join(home, ".config", "scenepack", "config.yml"),
			filepath.Join(home, ".config", "scenepack", "config.json"),
		)
	}

	return paths
}

// LoadConfigFile loads the first config file found on the search path.
// It returns (nil, "", nil) when no file exists.
func LoadConfigFile() (*FileConfig, string, error) {
	for _, path := range ConfigPaths() {
		cfg, err := LoadConfigFromPath(path)
		if err == nil {
			return cfg, path, nil
		}
		if !os.IsNotExist(err) {
			return nil, path, err
		}
	}
	return nil, "", nil
}

// LoadConfigFromPath parses and validates a single config file
func LoadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw any
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.KindConfig, "failed to parse "+path, err)
	}

	if err := validateDocument(raw); err != nil {
		return nil, apperrors.New(apperrors.KindConfig, "invalid config "+path, err)
	}

	// JSON is decoded through yaml.v3 as well so `mode: 2` fills a string field
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.New(apperrors.KindConfig, "failed to decode "+path, err)
	}

	return &cfg, nil
}

// validateDocument checks a decoded YAML/JSON document against the embedded schema.
// The document is normalised through JSON so numbers arrive as json.Number.
func validateDocument(doc any) error {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("schema.json", schemaSource)
	})
	if schemaErr != nil {
		return fmt.Errorf("compile config schema: %w", schemaErr)
	}
	if doc == nil {
		return nil
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var normalised any
	if err := dec.Decode(&normalised); err != nil {
		return err
	}

	return compiledSchema.Validate(normalised)
}
