// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Compressed snapshot bundles (tar + zstd)

package snapshot

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	apperrors "github.com/sony-level/scenepack/internal/errors"
)

// BundlePath returns where the bundle of a snapshot is written
func BundlePath(savesDir, name string) string {
	return filepath.Join(savesDir, name+BundleExt)
}

// Bundle writes snapshotDir as a zstd-compressed tar stream to dst.
// Entries are rooted at the snapshot directory name. An existing dst is
// never overwritten.
func Bundle(snapshotDir, dst string) (err error) {
	info, err := os.Stat(snapshotDir)
	if err != nil {
		return apperrors.NewArchive("snapshot not readable", err)
	}
	if !info.IsDir() {
		return apperrors.NewArchive(snapshotDir+" is not a directory", nil)
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return apperrors.NewArchive("cannot create bundle", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = apperrors.NewArchive("cannot close bundle", cerr)
		}
		if err != nil {
			os.Remove(dst)
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return apperrors.NewArchive("zstd writer", err)
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	tw := tar.NewWriter(bw)

	root := filepath.Base(snapshotDir)
	if err := writeTree(tw, snapshotDir, root); err != nil {
		enc.Close()
		return apperrors.NewArchive("bundle "+dst, err)
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return apperrors.NewArchive("tar close", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return apperrors.NewArchive("flush", err)
	}
	if err := enc.Close(); err != nil {
		return apperrors.NewArchive("zstd close", err)
	}
	return nil
}

func writeTree(tw *tar.Writer, dir, root string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join(root, relPath))
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("%s: %w", relPath, err)
		}
		return nil
	})
}
