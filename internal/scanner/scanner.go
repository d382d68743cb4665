// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Main scanner logic

package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Scan inventories the geometry and texture directories.
// The texture directory is commonly nested inside the geometry directory;
// textures are only counted once.
func Scan(config *ScanConfig) (*Inventory, error) {
	if config == nil {
		return nil, fmt.Errorf("scan config cannot be nil")
	}
	if config.GeometryDir == "" {
		return nil, fmt.Errorf("geometry directory cannot be empty")
	}
	if config.MaxDepth == 0 {
		config.MaxDepth = 1
	}

	startTime := time.Now()
	inv := &Inventory{
		GeometryDir: config.GeometryDir,
		TextureDir:  config.TextureDir,
		Errors:      []error{},
	}

	err := walk(config.GeometryDir, config.MaxDepth, inv, func(path, relPath string, size int64) {
		switch kind := Classify(path); kind {
		case KindGeometry, KindBuffer:
			inv.Geometry = append(inv.Geometry, Asset{Path: path, RelPath: relPath, Kind: kind, Size: size})
		case KindTexture:
			// counted from TextureDir
		default:
			inv.Ignored++
		}
	})
	if err != nil {
		return nil, err
	}

	if config.TextureDir != "" {
		err = walk(config.TextureDir, config.MaxDepth, inv, func(path, relPath string, size int64) {
			if Classify(path) == KindTexture {
				inv.Textures = append(inv.Textures, Asset{Path: path, RelPath: relPath, Kind: KindTexture, Size: size})
			}
		})
		if err != nil {
			return nil, err
		}
	}

	sortAssets(inv.Geometry)
	sortAssets(inv.Textures)
	inv.ScanDuration = time.Since(startTime)
	return inv, nil
}

// Textures lists the .png files directly under dir, sorted by name.
// Unlike Scan, an unreadable directory is an error.
func Textures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if Classify(e.Name()) == KindTexture {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Classify returns the asset kind of a file name, or "" if unknown
func Classify(name string) AssetKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gltf", ".glb":
		return KindGeometry
	case ".bin":
		return KindBuffer
	case ".png":
		return KindTexture
	}
	return ""
}

// walk visits regular files under root up to maxDepth, skipping hidden
// directories and symlinks.
func walk(root string, maxDepth int, inv *Inventory, visit func(path, relPath string, size int64)) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			inv.Errors = append(inv.Errors, err)
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		depth := 0
		if relPath != "." {
			depth = strings.Count(relPath, string(os.PathSeparator)) + 1
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if depth >= maxDepth || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 || depth > maxDepth {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			inv.Errors = append(inv.Errors, err)
			return nil
		}
		visit(path, relPath, fi.Size())
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool { return assets[i].RelPath < assets[j].RelPath })
}
