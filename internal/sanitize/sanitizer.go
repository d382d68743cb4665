// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// In-place scene descriptor sanitizer

package sanitize

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/sony-level/scenepack/internal/logging"
	"github.com/sony-level/scenepack/internal/workspace"
)

// Report counts removed regions per matcher
type Report struct {
	Removed map[string]int
}

// Total returns the number of regions removed
func (r Report) Total() int {
	total := 0
	for _, n := range r.Removed {
		total += n
	}
	return total
}

// Sanitizer strips scaffold fragments from scene descriptors
type Sanitizer struct {
	matchers []Matcher
	logger   *zap.Logger
}

// New creates a sanitizer. Without matchers it uses DefaultMatchers.
func New(logger *zap.Logger, matchers ...Matcher) *Sanitizer {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Sanitizer{
		matchers: matchers,
		logger:   logging.OrNop(logger),
	}
}

// Apply runs every matcher over content in order
func (s *Sanitizer) Apply(content []byte) ([]byte, Report) {
	report := Report{Removed: make(map[string]int)}
	for _, m := range s.matchers {
		var n int
		content, n = m.Remove(content)
		if n > 0 {
			report.Removed[m.Name()] += n
		}
	}
	return content, report
}

// Sanitize rewrites the file at path when at least one fragment matched.
// An untouched file keeps its bytes and modification time.
func (s *Sanitizer) Sanitize(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned, report := s.Apply(content)
	if report.Total() == 0 {
		s.logger.Debug("descriptor already clean", zap.String("path", path))
		return false, nil
	}

	if err := replaceFile(path, cleaned, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Debug("descriptor sanitized",
		zap.String("path", path),
		zap.Any("removed", report.Removed),
	)
	return true, nil
}

// Clean is Sanitize for callers that only need "did it change".
// Errors are logged and reported as no change.
func (s *Sanitizer) Clean(path string) bool {
	changed, err := s.Sanitize(path)
	if err != nil {
		s.logger.Warn("sanitize failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return changed
}

// replaceFile writes data next to path and renames it over path
func replaceFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Summary describes a batch sanitize over saved snapshots
type Summary struct {
	Scanned int
	Changed []string
	Failed  map[string]error
}

// SanitizeSaves sanitizes every descriptor in every savesDir/*/meshes directory
func (s *Sanitizer) SanitizeSaves(savesDir string) (*Summary, error) {
	summary := &Summary{Failed: make(map[string]error)}

	entries, err := os.ReadDir(savesDir)
	if os.IsNotExist(err) {
		return summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saves directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meshes := filepath.Join(savesDir, entry.Name(), workspace.MeshesSubdir)
		paths, err := workspace.FindDescriptors(meshes)
		if err != nil {
			summary.Failed[meshes] = err
			continue
		}
		for _, path := range paths {
			summary.Scanned++
			changed, err := s.Sanitize(path)
			if err != nil {
				summary.Failed[path] = err
				continue
			}
			if changed {
				summary.Changed = append(summary.Changed, path)
			}
		}
	}
	return summary, nil
}
