// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Pipeline stage ids, run result and collaborator interfaces

package pipeline

import (
	"context"
	"time"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/enhance"
	"github.com/sony-level/scenepack/internal/exec"
	"github.com/sony-level/scenepack/internal/history"
	"github.com/sony-level/scenepack/internal/prereq"
	"github.com/sony-level/scenepack/internal/scanner"
	"github.com/sony-level/scenepack/internal/workspace"
)

// StageID names a pipeline stage
type StageID string

const (
	StagePrerequisites StageID = "prerequisites"
	StageWorkspace     StageID = "workspace"
	StageEnhance       StageID = "enhance"
	StageExport        StageID = "export"
	StageSanitize      StageID = "sanitize"
	StageArchive       StageID = "archive"
)

// Stages lists every stage in execution order
var Stages = []StageID{
	StagePrerequisites,
	StageWorkspace,
	StageEnhance,
	StageExport,
	StageSanitize,
	StageArchive,
}

var stageTitles = map[StageID]string{
	StagePrerequisites: "Prerequisites",
	StageWorkspace:     "Workspace",
	StageEnhance:       "Enhance textures",
	StageExport:        "Export scene",
	StageSanitize:      "Sanitize descriptor",
	StageArchive:       "Archive",
}

// Title returns the banner title of a stage
func (s StageID) Title() string {
	if t, ok := stageTitles[s]; ok {
		return t
	}
	return string(s)
}

// index returns the 1-based position of the stage
func (s StageID) index() int {
	for i, id := range Stages {
		if id == s {
			return i + 1
		}
	}
	return 0
}

// RunResult is the outcome of one pipeline run
type RunResult struct {
	Success       bool
	StartedAt     time.Time
	Elapsed       time.Duration
	FailureStage  StageID // empty on success
	FailureReason string
	Missing       []string // required prerequisites not found
	Warnings      []string
	Descriptor    string // sanitized scene descriptor
	SnapshotName  string // actual snapshot name, empty if none
	BundlePath    string
	PublishedKey  string
	ArchiveErr    error // archive/bundle/publish failure; does not affect Success
}

// ElapsedSeconds returns the elapsed time in seconds
func (r *RunResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// DependencyChecker validates the files and tools a run needs
type DependencyChecker interface {
	CheckPrerequisites(cfg config.RunConfig) *prereq.CheckSummary
}

// AssetScanner inventories the inputs for reporting
type AssetScanner func(cfg *scanner.ScanConfig) (*scanner.Inventory, error)

// WorkspaceResetter discards and recreates the output workspace
type WorkspaceResetter interface {
	Reset(cfg config.RunConfig) (*workspace.Workspace, error)
}

// TextureEnhancer runs the texture enhancement stage
type TextureEnhancer interface {
	Run(ctx context.Context, cfg config.RunConfig) (*enhance.Report, error)
}

// SceneExporter runs the authoring tool
type SceneExporter interface {
	Run(ctx context.Context, cfg config.RunConfig, ws *workspace.Workspace) (*exec.CommandResult, error)
}

// DescriptorSanitizer strips scaffold regions from a scene descriptor
type DescriptorSanitizer interface {
	Sanitize(path string) (bool, error)
}

// SnapshotArchiver copies the workspace into the saves directory
type SnapshotArchiver interface {
	Archive(workspaceDir, requestedName, savesDir string) (string, error)
}

// BundleFunc writes a compressed bundle of a snapshot directory
type BundleFunc func(snapshotDir, dst string) error

// Recorder stores one record per run
type Recorder interface {
	RecordRun(ctx context.Context, r history.RunRecord) (int64, error)
}

// Publisher uploads a snapshot bundle
type Publisher interface {
	Publish(ctx context.Context, name, bundlePath string) (string, error)
}
