// Package archive packs build output into gzip-compressed tar artifacts.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

// DepsDir is the directory of a build context that holds linked dependencies.
// It is never packed.
const DepsDir = "deps"

var _ ports.Packer = (*Packer)(nil)

// Packer implements ports.Packer.
type Packer struct {
	walker *pacfs.Walker
	loader ports.PackageLoader
}

// NewPacker creates a Packer. loader decodes descriptors found inside artifacts.
func NewPacker(walker *pacfs.Walker, loader ports.PackageLoader) *Packer {
	return &Packer{walker: walker, loader: loader}
}

// Pack writes "<Path>/<Name>.cp" from the files below pkg.Path and records it in pkg.Artifact.
func (p *Packer) Pack(ctx context.Context, pkg *domain.Package) error {
	dst := filepath.Join(pkg.Path, pkg.Name+"."+domain.ArtifactExt)

	pr, pw := io.Pipe()
	go func() {
		_ = pw.CloseWithError(p.writeArchive(ctx, pkg.Path, pw))
	}()

	if _, err := pacfs.WriteAtomic(dst, pr); err != nil {
		_ = pr.CloseWithError(err)
		return zerr.With(zerr.Wrap(err, "failed to pack artifact"), "package", pkg.Ref())
	}
	pkg.Artifact = dst
	return nil
}

func (p *Packer) writeArchive(ctx context.Context, root string, w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	ignores := []string{DepsDir, "*." + domain.ArtifactExt, ".*.part"}
	for file := range p.walker.WalkFiles(root, ignores) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addFile(tw, root, file); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish tar stream")
	}
	if err := gz.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish gzip stream")
	}
	return nil
}

func addFile(tw *tar.Writer, root, file string) error {
	info, err := os.Lstat(file)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", file)
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(file); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", file)
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to build tar header"), "path", file)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return zerr.Wrap(err, "failed to compute relative path")
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write tar header"), "path", file)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(file) //nolint:gosec // Walked from the package root
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", file)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	if _, err := io.Copy(tw, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to archive file"), "path", file)
	}
	return nil
}

// ReadDescriptor decodes the package descriptor stored at the root of an artifact.
func (p *Packer) ReadDescriptor(artifactPath string) (*domain.PackageConfig, error) {
	var cfg *domain.PackageConfig
	err := p.each(artifactPath, func(hdr *tar.Header, r io.Reader) (bool, error) {
		name := path.Clean(hdr.Name)
		if hdr.Typeflag != tar.TypeReg || !slices.Contains(domain.DescriptorFiles, name) {
			return true, nil
		}
		decoded, err := p.loader.Decode(name, r)
		if err != nil {
			return false, err
		}
		cfg = decoded
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageConfigNotFound, "artifact has no descriptor"), "artifact", artifactPath)
	}
	return cfg, nil
}

// Extract unpacks an artifact into dir. Entries escaping dir are rejected.
func (p *Packer) Extract(artifactPath, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}

	return p.each(artifactPath, func(hdr *tar.Header, r io.Reader) (bool, error) {
		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return false, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return false, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return false, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", target)
			}
			if err := writeFile(target, r, hdr.FileInfo().Mode().Perm()); err != nil {
				return false, err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return false, zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "absolute symlink in artifact"), "entry", hdr.Name)
			}
			if _, err := safeJoin(filepath.Dir(target), hdr.Linkname); err != nil {
				return false, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return false, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", target)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return false, zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", target)
			}
		}
		return true, nil
	})
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o600) //nolint:gosec // Checked by safeJoin
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", target)
	}
	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // Artifacts are produced by trusted builds
		_ = f.Close()
		return zerr.With(zerr.Wrap(err, "failed to extract file"), "path", target)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", target)
	}
	return nil
}

// each calls fn for every entry of the artifact until fn returns false.
func (p *Packer) each(artifactPath string, fn func(*tar.Header, io.Reader) (bool, error)) error {
	f, err := os.Open(artifactPath) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open artifact"), "artifact", artifactPath)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	gz, err := gzip.NewReader(f)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "artifact is not gzip compressed"), "artifact", artifactPath)
	}
	defer gz.Close() //nolint:errcheck // Read-only stream

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "corrupt artifact: "+err.Error()), "artifact", artifactPath)
		}
		more, err := fn(hdr, tr)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func safeJoin(dir, name string) (string, error) {
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "artifact entry escapes target directory"), "entry", name)
	}
	return target, nil
}
