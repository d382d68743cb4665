// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Prerequisite types and requirement definitions

package prereq

// RequirementKind tells the checker how to look for a requirement
type RequirementKind string

const (
	KindFile       RequirementKind = "file"
	KindDir        RequirementKind = "dir"
	KindExecutable RequirementKind = "executable" // path or PATH lookup
)

// Requirement represents one file, directory or tool the run depends on
type Requirement struct {
	Name         string          // Display name
	Path         string          // Path or command name
	Kind         RequirementKind // How to check it
	Optional     bool            // Missing optional requirements are warnings
	InstallGuide string          // Shown when missing
}

// CheckResult contains the result of checking a requirement
type CheckResult struct {
	Name     string // Requirement name
	Found    bool   // Whether it was found
	Optional bool
	Path     string // Resolved path (if found)
	Error    error  // Why it was not found
}

// CheckSummary contains results for all checks
type CheckSummary struct {
	Results      []CheckResult // Individual results
	AllFound     bool          // Whether all required entries were found
	MissingTools []string      // Missing required names
	Warnings     []string      // Missing optional names
}

// NewCheckSummary creates a new check summary
func NewCheckSummary() *CheckSummary {
	return &CheckSummary{
		Results:      []CheckResult{},
		AllFound:     true,
		MissingTools: []string{},
	}
}

// AddResult adds a check result to the summary
func (s *CheckSummary) AddResult(result CheckResult) {
	s.Results = append(s.Results, result)
	if result.Found {
		return
	}
	if result.Optional {
		s.Warnings = append(s.Warnings, result.Name)
		return
	}
	s.AllFound = false
	s.MissingTools = append(s.MissingTools, result.Name)
}

// OptionalMissing reports whether any optional requirement is missing
func (s *CheckSummary) OptionalMissing() bool {
	return len(s.Warnings) > 0
}

const blenderGuide = `Install Blender (4.x):
  macOS:   brew install --cask blender
  Ubuntu:  sudo snap install blender --classic
  Windows: https://www.blender.org/download/
  Or set paths.tool / SCENEPACK_TOOL_PATH to the executable`

const enhancerGuide = `Install Real-ESRGAN ncnn Vulkan:
  All:     https://github.com/xinntao/Real-ESRGAN/releases
  Then set enhancement.enhancer_path / SCENEPACK_ENHANCER_PATH
  Texture enhancement is skipped while it is missing`

const modelGuide = `Put the ncnn model files into the models directory:
  RealESRGAN_x2plus.param + .bin, RealESRGAN_x4plus.param + .bin
  Convert .pth weights with the Real-ESRGAN ncnn export if only those exist
  Texture enhancement is skipped while the model is missing`
