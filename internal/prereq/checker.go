// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite checker for required files, directories and tools

package prereq

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sony-level/scenepack/internal/config"
	"github.com/sony-level/scenepack/internal/workspace"
)

// Checker verifies that requirements exist
type Checker struct {
	lookPath func(string) (string, error)
}

// NewChecker creates a new prerequisite checker
func NewChecker() *Checker {
	return &Checker{lookPath: exec.LookPath}
}

// NewCheckerWithLookPath creates a checker with a custom PATH resolver
func NewCheckerWithLookPath(lookPath func(string) (string, error)) *Checker {
	return &Checker{lookPath: lookPath}
}

// Requirements lists what a run with cfg depends on.
// The enhancer and its model are only listed when enhancement is enabled.
func Requirements(cfg config.RunConfig) []Requirement {
	p := cfg.Paths
	reqs := []Requirement{
		{Name: "authoring tool", Path: p.ExternalToolPath, Kind: KindExecutable, InstallGuide: blenderGuide},
		{Name: "export script", Path: p.ExportScriptPath, Kind: KindFile},
		{Name: "geometry directory", Path: p.InputGeometryDir, Kind: KindDir},
		{Name: "texture directory", Path: p.InputTextureDir, Kind: KindDir},
	}
	for _, src := range workspace.TemplateNames() {
		reqs = append(reqs, Requirement{
			Name: "template " + src,
			Path: filepath.Join(p.TemplatesDir, src),
			Kind: KindFile,
		})
	}

	if cfg.Enhancement.Enabled {
		reqs = append(reqs, Requirement{Name: "enhancer", Path: cfg.Enhancement.EnhancerPath, Kind: KindExecutable, Optional: true, InstallGuide: enhancerGuide})
		for _, path := range cfg.Enhancement.ModelFiles() {
			reqs = append(reqs, Requirement{
				Name:         "enhancement model " + filepath.Base(path),
				Path:         path,
				Kind:         KindFile,
				Optional:     true,
				InstallGuide: modelGuide,
			})
		}
	}
	return reqs
}

// CheckPrerequisites verifies every requirement of a run
func (c *Checker) CheckPrerequisites(cfg config.RunConfig) *CheckSummary {
	return c.CheckMultiple(Requirements(cfg))
}

// CheckMultiple checks requirements and returns a summary
func (c *Checker) CheckMultiple(reqs []Requirement) *CheckSummary {
	summary := NewCheckSummary()
	for _, req := range reqs {
		summary.AddResult(c.CheckRequirement(req))
	}
	return summary
}

// CheckRequirement checks a single requirement
func (c *Checker) CheckRequirement(req Requirement) CheckResult {
	result := CheckResult{Name: req.Name, Optional: req.Optional}

	if strings.TrimSpace(req.Path) == "" {
		result.Error = fmt.Errorf("no path configured")
		return result
	}

	switch req.Kind {
	case KindExecutable:
		path, err := c.resolveExecutable(req.Path)
		if err != nil {
			result.Error = err
			return result
		}
		result.Found = true
		result.Path = path
	case KindDir:
		info, err := os.Stat(req.Path)
		switch {
		case err != nil:
			result.Error = err
		case !info.IsDir():
			result.Error = fmt.Errorf("%s is not a directory", req.Path)
		default:
			result.Found = true
			result.Path = req.Path
		}
	default:
		info, err := os.Stat(req.Path)
		switch {
		case err != nil:
			result.Error = err
		case info.IsDir():
			result.Error = fmt.Errorf("%s is a directory", req.Path)
		default:
			result.Found = true
			result.Path = req.Path
		}
	}
	return result
}

// resolveExecutable accepts an explicit path or a bare command name
func (c *Checker) resolveExecutable(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		info, err := os.Stat(name)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", name)
		}
		return name, nil
	}
	return c.lookPath(name)
}

// FormatMissing returns a formatted string of missing requirements with install guides
func (c *Checker) FormatMissing(summary *CheckSummary, reqs []Requirement) string {
	if summary.AllFound && !summary.OptionalMissing() {
		return ""
	}

	guides := make(map[string]Requirement, len(reqs))
	for _, r := range reqs {
		guides[r.Name] = r
	}

	var sb strings.Builder
	write := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		sb.WriteString(title + ":\n\n")
		for _, name := range names {
			req := guides[name]
			sb.WriteString("─────────────────────────────────\n")
			sb.WriteString(name + "\n")
			sb.WriteString("─────────────────────────────────\n")
			if req.Path != "" {
				sb.WriteString("  looked for: " + req.Path + "\n")
			}
			if req.InstallGuide != "" {
				sb.WriteString(req.InstallGuide + "\n")
			}
			sb.WriteString("\n")
		}
	}
	write("Missing prerequisites", summary.MissingTools)
	write("Missing optional components", summary.Warnings)
	return sb.String()
}
