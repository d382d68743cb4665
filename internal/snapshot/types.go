// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Snapshot types and constants

package snapshot

import "fmt"

// BundleExt is appended to the snapshot name for the compressed bundle
const BundleExt = ".tar.zst"

// maxSuffix bounds the collision search in ResolveName
const maxSuffix = 100000

// CopyStats counts what a snapshot copy wrote
type CopyStats struct {
	Files       int
	Dirs        int
	Symlinks    int
	BytesCopied int64
}

// candidate returns the n-th name tried for requested: requested, requested(1), ...
func candidate(requested string, n int) string {
	if n == 0 {
		return requested
	}
	return fmt.Sprintf("%s(%d)", requested, n)
}
