// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Texture enhancement stage

package enhance

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/scanner"
)

// Failure records one texture that could not be enhanced
type Failure struct {
	Path string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", filepath.Base(f.Path), f.Err)
}

// Report summarizes one stage run
type Report struct {
	Skipped    bool
	SkipReason string
	Enhanced   []string  // textures replaced in place
	Failures   []Failure // per-texture failures, sorted by path
}

// Stage replaces every texture with an enhanced version
type Stage struct {
	enhancer Enhancer
	logger   *zap.Logger
}

// NewStage creates an enhancement stage. A nil enhancer makes Run a no-op.
func NewStage(enhancer Enhancer, logger *zap.Logger) *Stage {
	return &Stage{enhancer: enhancer, logger: logging.OrNop(logger)}
}

// Run enhances every .png directly under the texture directory.
// Per-texture failures land in the report; only an unreadable directory or
// a cancelled context is returned as an error.
func (s *Stage) Run(ctx context.Context, cfg config.RunConfig) (*Report, error) {
	e := cfg.Enhancement
	switch {
	case !e.Enabled || e.Factor <= 0:
		return &Report{Skipped: true, SkipReason: "enhancement disabled"}, nil
	case e.ModelRef == "":
		return &Report{Skipped: true, SkipReason: "no enhancement model"}, nil
	case s.enhancer == nil:
		return &Report{Skipped: true, SkipReason: "no enhancer available"}, nil
	}

	textures, err := scanner.Textures(cfg.Paths.InputTextureDir)
	if err != nil {
		return nil, err
	}

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	report := &Report{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range textures {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := s.enhanceOne(gctx, path, e.Factor)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("texture enhancement failed", zap.String("texture", path), zap.Error(err))
				report.Failures = append(report.Failures, Failure{Path: path, Err: err})
				return nil
			}
			s.logger.Debug("texture enhanced", zap.String("texture", path), zap.Int("factor", e.Factor))
			report.Enhanced = append(report.Enhanced, path)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("enhancement interrupted: %w", err)
	}

	sort.Strings(report.Enhanced)
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Path < report.Failures[j].Path })
	return report, nil
}

// enhanceOne writes the enhanced image next to the original and renames it over
func (s *Stage) enhanceOne(ctx context.Context, path string, factor int) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	before, err := decodeBounds(path)
	if err != nil {
		return fmt.Errorf("unreadable image: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+stem+".enhanced-*.png")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	if err := s.enhancer.Enhance(ctx, path, tmpPath, factor); err != nil {
		return err
	}

	after, err := decodeBounds(tmpPath)
	if err != nil {
		return fmt.Errorf("enhancer produced an unreadable image: %w", err)
	}
	if after.Dx() < before.Dx() || after.Dy() < before.Dy() {
		return fmt.Errorf("enhanced image %dx%d is smaller than the original %dx%d",
			after.Dx(), after.Dy(), before.Dx(), before.Dy())
	}

	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	renamed = true
	return nil
}

// decodeBounds fully decodes a PNG so truncated data is caught
func decodeBounds(path string) (image.Rectangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Rectangle{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return image.Rectangle{}, err
	}
	return img.Bounds(), nil
}
