// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Pipeline orchestrator: runs the stages in order for one RunConfig

package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/enhance"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/exec"
	"github.com/sony-level/scenepack/internal/export"
	"github.com/sony-level/scenepack/internal/history"
	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/prereq"
	"github.com/sony-level/scenepack/internal/sanitize"
	"github.com/sony-level/scenepack/internal/scanner"
	"github.com/sony-level/scenepack/internal/snapshot"
	"github.com/sony-level/scenepack/internal/workspace"
)

// Deps are the stage implementations used by the orchestrator.
// Recorder and Publisher are optional.
type Deps struct {
	Checker   DependencyChecker
	Scanner   AssetScanner
	Workspace WorkspaceResetter
	Enhancer  TextureEnhancer
	Exporter  SceneExporter
	Sanitizer DescriptorSanitizer
	Archiver  SnapshotArchiver
	Bundle    BundleFunc
	Recorder  Recorder
	Publisher Publisher
}

// DefaultDeps wires the real stages for cfg around runner
func DefaultDeps(cfg config.RunConfig, runner exec.ProcessRunner, logger *zap.Logger) Deps {
	var enhancer enhance.Enhancer
	if cfg.Enhancement.Enabled {
		enhancer = enhance.NewProcessEnhancer(runner, cfg.Enhancement, cfg.Timeouts.Enhance)
	}
	return Deps{
		Checker:   prereq.NewChecker(),
		Scanner:   scanner.Scan,
		Workspace: workspace.NewManager(logger),
		Enhancer:  enhance.NewStage(enhancer, logger),
		Exporter:  export.NewStage(runner, logger),
		Sanitizer: sanitize.New(logger),
		Archiver:  snapshot.NewArchiver(logger),
		Bundle:    snapshot.Bundle,
	}
}

// Orchestrator runs the pipeline stages in sequence
type Orchestrator struct {
	deps     Deps
	progress *Progress
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an orchestrator. Progress banners go to out.
func New(deps Deps, out io.Writer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		deps:     deps,
		progress: NewProgress(out),
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Run executes one pipeline run.
// Stage failures are reported in the result; only a configuration error or
// a failed workspace reset is returned as an error.
func (o *Orchestrator) Run(ctx context.Context, cfg config.RunConfig) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &RunResult{StartedAt: o.now()}
	var timer time.Time
	defer func() {
		if !timer.IsZero() {
			res.Elapsed = o.now().Sub(timer)
		}
		o.record(ctx, cfg, res)
	}()

	if o.interrupted(ctx, res, StagePrerequisites) {
		return res, nil
	}
	o.progress.Phase(StagePrerequisites)
	summary := o.deps.Checker.CheckPrerequisites(cfg)
	if !summary.AllFound {
		res.Missing = summary.MissingTools
		o.fail(res, StagePrerequisites, apperrors.NewDependency("missing "+strings.Join(summary.MissingTools, ", "), nil))
		return res, nil
	}
	o.progress.Step("%d prerequisites found", len(summary.Results)-len(summary.Warnings))
	degraded := cfg.Enhancement.Enabled && summary.OptionalMissing()
	if degraded {
		o.warn(res, "enhancement unavailable (missing %s); textures are left as is", strings.Join(summary.Warnings, ", "))
	}
	o.reportInputs(cfg)

	timer = o.now()

	if o.interrupted(ctx, res, StageWorkspace) {
		return res, nil
	}
	o.progress.Phase(StageWorkspace)
	ws, err := o.deps.Workspace.Reset(cfg)
	if err != nil {
		o.fail(res, StageWorkspace, err)
		return res, err
	}
	o.progress.Step("Workspace ready at %s", ws.Path)

	if o.interrupted(ctx, res, StageEnhance) {
		return res, nil
	}
	o.progress.Phase(StageEnhance)
	if !o.enhance(ctx, cfg, res, degraded) {
		return res, nil
	}

	if o.interrupted(ctx, res, StageExport) {
		return res, nil
	}
	o.progress.Phase(StageExport)
	o.progress.Step("Running %s", filepath.Base(cfg.Paths.ExternalToolPath))
	result, err := o.deps.Exporter.Run(ctx, cfg, ws)
	if err != nil {
		o.fail(res, StageExport, apperrors.NewStage("scene export failed", err))
		return res, nil
	}
	if result != nil {
		o.progress.Step("Exported in %v", result.Duration.Round(time.Millisecond))
	}

	if o.interrupted(ctx, res, StageSanitize) {
		return res, nil
	}
	o.progress.Phase(StageSanitize)
	if !o.sanitize(ws, res) {
		return res, nil
	}

	if o.interrupted(ctx, res, StageArchive) {
		return res, nil
	}
	o.progress.Phase(StageArchive)
	if cfg.Snapshot.Save {
		o.archive(ctx, cfg, ws, res)
	} else {
		o.progress.Step("Skipped (no permanent copy requested)")
	}

	res.Success = true
	return res, nil
}

func (o *Orchestrator) enhance(ctx context.Context, cfg config.RunConfig, res *RunResult, degraded bool) bool {
	if !cfg.Enhancement.Enabled {
		o.progress.Step("Skipped (%s)", cfg.Enhancement.Description)
		return true
	}
	if degraded || o.deps.Enhancer == nil {
		o.progress.Step("Skipped (enhancer unavailable)")
		return true
	}

	o.progress.Step("Upscaling x%d with %s", cfg.Enhancement.Factor, cfg.Enhancement.ModelRef)
	report, err := o.deps.Enhancer.Run(ctx, cfg)
	if err != nil {
		o.fail(res, StageEnhance, apperrors.NewStage("texture enhancement failed", err))
		return false
	}
	if report.Skipped {
		o.progress.Step("Skipped (%s)", report.SkipReason)
		return true
	}
	o.progress.Step("%d textures enhanced", len(report.Enhanced))
	for _, f := range report.Failures {
		o.warn(res, "texture not enhanced: %s", f)
	}
	return true
}

func (o *Orchestrator) sanitize(ws *workspace.Workspace, res *RunResult) bool {
	descriptors, err := ws.Descriptors()
	if err != nil {
		o.fail(res, StageSanitize, apperrors.NewIO("cannot list scene descriptors", err))
		return false
	}
	if len(descriptors) == 0 {
		o.fail(res, StageSanitize, apperrors.NewStage("no scene descriptor in "+ws.MeshesPath(), nil))
		return false
	}
	if len(descriptors) > 1 {
		o.warn(res, "%d descriptors exported; only %s is sanitized", len(descriptors), filepath.Base(descriptors[0]))
	}

	changed, err := o.deps.Sanitizer.Sanitize(descriptors[0])
	if err != nil {
		o.fail(res, StageSanitize, apperrors.NewIO("cannot sanitize "+descriptors[0], err))
		return false
	}
	res.Descriptor = descriptors[0]
	if changed {
		o.progress.Step("Removed default scaffold from %s", filepath.Base(descriptors[0]))
	} else {
		o.progress.Step("%s already clean", filepath.Base(descriptors[0]))
	}
	return true
}

// archive never fails the run; errors land in ArchiveErr and Warnings
func (o *Orchestrator) archive(ctx context.Context, cfg config.RunConfig, ws *workspace.Workspace, res *RunResult) {
	name, err := o.deps.Archiver.Archive(ws.Path, cfg.Snapshot.Name, cfg.Paths.SavesDir)
	if err != nil {
		res.ArchiveErr = err
		if name != "" {
			o.warn(res, "snapshot %q incomplete: %v", name, err)
		} else {
			o.warn(res, "snapshot not saved: %v", err)
		}
		return
	}
	res.SnapshotName = name
	snapshotDir := filepath.Join(cfg.Paths.SavesDir, name)
	if name != cfg.Snapshot.Name {
		o.progress.Step("%q exists, saved as %q", cfg.Snapshot.Name, name)
	}
	o.progress.Step("Snapshot saved at %s", snapshotDir)

	if !cfg.Snapshot.Bundle || o.deps.Bundle == nil {
		return
	}
	bundlePath := snapshot.BundlePath(cfg.Paths.SavesDir, name)
	if err := o.deps.Bundle(snapshotDir, bundlePath); err != nil {
		res.ArchiveErr = err
		o.warn(res, "bundle not written: %v", err)
		return
	}
	res.BundlePath = bundlePath
	o.progress.Step("Bundle written to %s", bundlePath)

	if o.deps.Publisher == nil {
		return
	}
	key, err := o.deps.Publisher.Publish(ctx, name, bundlePath)
	if err != nil {
		res.ArchiveErr = err
		o.warn(res, "bundle not published: %v", err)
		return
	}
	res.PublishedKey = key
	o.progress.Step("Published as %s", key)
}

func (o *Orchestrator) reportInputs(cfg config.RunConfig) {
	if o.deps.Scanner == nil {
		return
	}
	inv, err := o.deps.Scanner(&scanner.ScanConfig{
		GeometryDir: cfg.Paths.InputGeometryDir,
		TextureDir:  cfg.Paths.InputTextureDir,
	})
	if err != nil {
		o.logger.Debug("input scan failed", zap.Error(err))
		return
	}
	o.progress.Step("Inputs: %d geometry files, %d textures (%d bytes)",
		inv.Count(scanner.KindGeometry), inv.Count(scanner.KindTexture), inv.TotalSize())
	if inv.Count(scanner.KindGeometry) == 0 {
		o.logger.Warn("no .gltf/.glb files in geometry directory", zap.String("dir", cfg.Paths.InputGeometryDir))
	}
}

// interrupted fails the run at stage when ctx is done
func (o *Orchestrator) interrupted(ctx context.Context, res *RunResult, stage StageID) bool {
	if err := ctx.Err(); err != nil {
		o.fail(res, stage, fmt.Errorf("interrupted: %w", err))
		return true
	}
	return false
}

func (o *Orchestrator) fail(res *RunResult, stage StageID, err error) {
	res.FailureStage = stage
	res.FailureReason = err.Error()
	o.progress.Step("✗ %s failed: %v", stage.Title(), err)
	o.logger.Error("stage failed", zap.String("stage", string(stage)), zap.Error(err))
}

func (o *Orchestrator) warn(res *RunResult, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	res.Warnings = append(res.Warnings, msg)
	o.progress.Warn("%s", msg)
	o.logger.Warn(msg)
}

// record stores the run; history errors are logged only
func (o *Orchestrator) record(ctx context.Context, cfg config.RunConfig, res *RunResult) {
	if o.deps.Recorder == nil {
		return
	}
	_, err := o.deps.Recorder.RecordRun(context.WithoutCancel(ctx), history.RunRecord{
		MapName:       cfg.MapName,
		StartedAt:     res.StartedAt,
		Elapsed:       res.Elapsed,
		Success:       res.Success,
		FailureStage:  string(res.FailureStage),
		FailureReason: res.FailureReason,
		SnapshotName:  res.SnapshotName,
		Warnings:      len(res.Warnings),
	})
	if err != nil {
		o.logger.Warn("run not recorded", zap.Error(err))
	}
}
