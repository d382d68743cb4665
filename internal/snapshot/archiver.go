// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Snapshot archiving: collision-free naming and recursive copy

package snapshot

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/logging"
)

// Archiver copies finished workspaces into the saves directory
type Archiver struct {
	logger *zap.Logger
}

// NewArchiver creates a snapshot archiver
func NewArchiver(logger *zap.Logger) *Archiver {
	return &Archiver{logger: logging.OrNop(logger)}
}

// ResolveName returns the first of requested, requested(1), requested(2), ...
// that has no entry in savesDir. Existing snapshots are never reused.
func ResolveName(savesDir, requested string) (string, error) {
	if requested == "" {
		return "", fmt.Errorf("snapshot name is empty")
	}
	for n := 0; n < maxSuffix; n++ {
		name := candidate(requested, n)
		_, err := os.Lstat(filepath.Join(savesDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("no free snapshot name for %q", requested)
}

// Archive copies workspaceDir to savesDir/<name> and returns the name used.
// On a copy error the partial snapshot is left in place.
func (a *Archiver) Archive(workspaceDir, requestedName, savesDir string) (string, error) {
	info, err := os.Stat(workspaceDir)
	if err != nil {
		return "", apperrors.NewArchive("workspace not readable", err)
	}
	if !info.IsDir() {
		return "", apperrors.NewArchive(workspaceDir+" is not a directory", nil)
	}
	if err := os.MkdirAll(savesDir, 0755); err != nil {
		return "", apperrors.NewArchive("failed to create saves directory", err)
	}

	name, dest, err := claim(savesDir, requestedName, info.Mode().Perm())
	if err != nil {
		return "", apperrors.NewArchive("failed to reserve snapshot name", err)
	}

	stats, err := copyTree(workspaceDir, dest)
	if err != nil {
		return name, apperrors.NewArchive("snapshot copy incomplete: "+dest, err)
	}

	a.logger.Info("snapshot saved",
		zap.String("name", name),
		zap.String("path", dest),
		zap.Int("files", stats.Files),
		zap.Int64("bytes", stats.BytesCopied),
	)
	return name, nil
}

// claim resolves a name and creates its directory with a non-recursive
// Mkdir, retrying when another entry appears in between.
func claim(savesDir, requested string, perm os.FileMode) (string, string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		name, err := ResolveName(savesDir, requested)
		if err != nil {
			return "", "", err
		}
		dest := filepath.Join(savesDir, name)
		err = os.Mkdir(dest, perm|0700)
		if err == nil {
			return name, dest, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
	}
	return "", "", fmt.Errorf("snapshot name %q kept colliding", requested)
}

// copyTree copies src into the existing directory dst, preserving modes and
// symlinks
func copyTree(src, dst string) (CopyStats, error) {
	var stats CopyStats
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			if err := os.Mkdir(destPath, info.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", destPath, err)
			}
			stats.Dirs++
			return nil
		}

		copied, err := copyFile(path, destPath, info)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", relPath, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			stats.Symlinks++
		} else {
			stats.Files++
		}
		stats.BytesCopied += copied
		return nil
	})
	if err != nil {
		return stats, err
	}

	// directory modes are applied last so read-only dirs can be filled
	return stats, filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return err
		}
		relPath, _ := filepath.Rel(src, path)
		return os.Chmod(filepath.Join(dst, relPath), info.Mode().Perm())
	})
}

// copyFile copies a single file or symlink; an existing dst is an error
func copyFile(src, dst string, info os.FileInfo) (int64, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return 0, err
		}
		return 0, os.Symlink(target, dst)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("unsupported file type %s", info.Mode().Type())
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dstFile, srcFile)
	if cerr := dstFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return written, err
	}
	// umask may have narrowed the create mode
	return written, os.Chmod(dst, info.Mode().Perm())
}
