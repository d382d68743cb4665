// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Scanner types and constants

package scanner

import "time"

// AssetKind classifies an input file
type AssetKind string

const (
	KindGeometry AssetKind = "geometry" // .gltf / .glb scene files
	KindBuffer   AssetKind = "buffer"   // .bin buffers referenced by .gltf
	KindTexture  AssetKind = "texture"  // .png images
)

// ScanConfig holds configuration for scanning
type ScanConfig struct {
	GeometryDir string // Directory holding the scene files
	TextureDir  string // Directory holding the texture images
	MaxDepth    int    // Maximum directory depth below each root (default: 1)
}

// Asset is one inventoried input file
type Asset struct {
	Path    string    // Absolute path
	RelPath string    // Relative path from its root
	Kind    AssetKind // Classification
	Size    int64     // File size in bytes
}

// Inventory contains the detected input assets
type Inventory struct {
	GeometryDir  string
	TextureDir   string
	Geometry     []Asset       // Scene files and their buffers
	Textures     []Asset       // Texture images
	Ignored      int           // Files of no known kind
	ScanDuration time.Duration // Time taken to scan
	Errors       []error       // Non-fatal errors during scan
}

// Count returns the number of assets of a kind
func (inv *Inventory) Count(kind AssetKind) int {
	n := 0
	for _, list := range [][]Asset{inv.Geometry, inv.Textures} {
		for _, a := range list {
			if a.Kind == kind {
				n++
			}
		}
	}
	return n
}

// TotalSize returns the summed size of all inventoried assets
func (inv *Inventory) TotalSize() int64 {
	var total int64
	for _, a := range inv.Geometry {
		total += a.Size
	}
	for _, a := range inv.Textures {
		total += a.Size
	}
	return total
}

// TexturePaths returns the absolute texture paths in name order
func (inv *Inventory) TexturePaths() []string {
	paths := make([]string, 0, len(inv.Textures))
	for _, a := range inv.Textures {
		paths = append(paths, a.Path)
	}
	return paths
}
