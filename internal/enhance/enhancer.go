// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Super-resolution enhancer backed by an external process

package enhance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/exec"
)

// Enhancer upscales the image at src by factor and writes the result to dst
type Enhancer interface {
	Enhance(ctx context.Context, src, dst string, factor int) error
}

// EnhancerFunc adapts a function to Enhancer
type EnhancerFunc func(ctx context.Context, src, dst string, factor int) error

func (f EnhancerFunc) Enhance(ctx context.Context, src, dst string, factor int) error {
	return f(ctx, src, dst, factor)
}

// ProcessEnhancer runs a Real-ESRGAN style command line tool:
//
//	<tool> -i <src> -o <dst> -s <factor> -m <modelsDir> -n <model> [-t <tile>] [-g -1]
type ProcessEnhancer struct {
	runner    exec.ProcessRunner
	path      string
	modelsDir string
	model     string
	tileSize  int
	useGPU    bool
	timeout   time.Duration
}

// NewProcessEnhancer creates an enhancer for the given settings
func NewProcessEnhancer(runner exec.ProcessRunner, e config.Enhancement, timeout time.Duration) *ProcessEnhancer {
	return &ProcessEnhancer{
		runner:    runner,
		path:      e.EnhancerPath,
		modelsDir: e.ModelsDir,
		model:     e.ModelRef,
		tileSize:  e.TileSize,
		useGPU:    e.UseGPU,
		timeout:   timeout,
	}
}

// Args returns the argument list for one image
func (p *ProcessEnhancer) Args(src, dst string, factor int) []string {
	args := []string{
		"-i", src,
		"-o", dst,
		"-s", strconv.Itoa(factor),
	}
	if p.modelsDir != "" {
		args = append(args, "-m", p.modelsDir)
	}
	if p.model != "" {
		args = append(args, "-n", p.model)
	}
	if p.tileSize > 0 {
		args = append(args, "-t", strconv.Itoa(p.tileSize))
	}
	if !p.useGPU {
		args = append(args, "-g", "-1")
	}
	return args
}

// Enhance runs the tool once and waits for it
func (p *ProcessEnhancer) Enhance(ctx context.Context, src, dst string, factor int) error {
	result := p.runner.Run(ctx, exec.Command{
		Name:    "enhancer",
		Path:    p.path,
		Args:    p.Args(src, dst, factor),
		Timeout: p.timeout,
	})
	if result.Success() {
		return nil
	}
	if result.Error != nil {
		if tail := exec.TailLines(result.Stderr, 3); len(tail) > 0 {
			return fmt.Errorf("%w: %s", result.Error, strings.Join(tail, " | "))
		}
		return result.Error
	}
	return fmt.Errorf("enhancer exited with code %d", result.ExitCode)
}
