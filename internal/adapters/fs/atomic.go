package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// WriteAtomic streams r into dst. The content is written to a temporary file in the
// destination directory and renamed into place once complete, so readers never
// observe a partial file. Missing parent directories are created.
func WriteAtomic(dst string, r io.Reader) (int64, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to create temporary file"), "path", dir)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to write file"), "path", dst)
	}
	if err := tmp.Sync(); err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to sync file"), "path", dst)
	}
	if err := tmp.Close(); err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // Artifacts are world readable
		return n, zerr.With(zerr.Wrap(err, "failed to set permissions"), "path", dst)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return n, zerr.With(zerr.Wrap(err, "failed to move file into place"), "path", dst)
	}
	committed = true
	return n, nil
}

// CopyFileAtomic copies src to dst using WriteAtomic.
func CopyFileAtomic(src, dst string) (int64, error) {
	f, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	return WriteAtomic(dst, f)
}

// Exists reports whether path exists. Errors other than "not found" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
}
