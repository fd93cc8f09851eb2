package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/pac/internal/adapters/archive"
	"go.trai.ch/pac/internal/adapters/cas"
	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Backend = (*Local)(nil)

// Local is the filesystem tier. Artifacts live at <root>/<key path>; extracted
// copies used for linking live next to them.
type Local struct {
	tier
	root  string
	index ports.ArtifactIndex
}

// NewLocal creates the local tier rooted at the entry's URL, which may be a path or a file:// URL.
func NewLocal(entry domain.CacheEntry, runtime domain.RuntimeTag, opts Options) (*Local, error) {
	root := LocalRoot(entry.URL)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrCacheUnavailable, err), "failed to create local cache"), "path", root)
	}
	index, err := cas.NewStore(filepath.Join(root, cas.IndexFile))
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrCacheUnavailable, err), "cache", entry.Name)
	}
	return &Local{tier: newTier(entry, runtime, opts), root: root, index: index}, nil
}

// LocalRoot converts a configured local cache URL to a directory.
func LocalRoot(url string) string {
	return filepath.Clean(strings.TrimPrefix(url, "file://"))
}

// Root returns the cache directory.
func (l *Local) Root() string {
	return l.root
}

// Index returns the artifact index of the tier.
func (l *Local) Index() ports.ArtifactIndex {
	return l.index
}

func (l *Local) artifactPath(key domain.ArtifactKey) string {
	return filepath.Join(l.root, filepath.FromSlash(key.Path()))
}

// Exists stats the artifact file.
func (l *Local) Exists(_ context.Context, pkg *domain.Package) (bool, error) {
	if !l.runtime.Known() {
		return false, nil
	}
	key := l.Key(pkg)
	ok, err := pacfs.Exists(l.artifactPath(key))
	if err != nil {
		return false, l.wrap(domain.ErrCacheUnavailable, err, "failed to check artifact", key)
	}
	return ok, nil
}

// Fetch verifies the recorded checksum and reads the descriptor of the artifact in place.
func (l *Local) Fetch(ctx context.Context, pkg *domain.Package) error {
	if !l.runtime.Known() {
		return l.errorf(domain.ErrArtifactNotFound, "runtime tag unknown", l.Key(pkg))
	}
	key := l.Key(pkg)
	ok, err := l.Exists(ctx, pkg)
	if err != nil {
		return err
	}
	if !ok {
		return l.errorf(domain.ErrArtifactNotFound, "artifact not in cache", key)
	}

	file := l.artifactPath(key)
	record, err := l.index.Get(key.Path())
	if err != nil {
		return l.wrap(domain.ErrCacheUnavailable, err, "failed to read artifact index", key)
	}
	if record != nil && record.Checksum != "" {
		sum, err := l.opts.Hasher.ComputeFileHash(file)
		if err != nil {
			return l.wrap(domain.ErrTransferFailed, err, "failed to hash artifact", key)
		}
		if sum != record.Checksum {
			err := l.errorf(domain.ErrTransferFailed, "artifact checksum mismatch", key)
			return zerr.With(err, "expected", record.Checksum)
		}
	}
	return l.describe(pkg, file)
}

// Publish copies the artifact of pkg into the tree and records it in the index.
func (l *Local) Publish(ctx context.Context, pkg *domain.Package, overwrite bool) (bool, error) {
	key := l.Key(pkg)
	if !l.runtime.Known() {
		return false, l.errorf(domain.ErrUnknownRuntime, "cannot publish without a runtime tag", key)
	}
	if !overwrite {
		ok, err := l.Exists(ctx, pkg)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	src := pkg.ArtifactPath()
	dst := l.artifactPath(key)
	if filepath.Clean(src) == dst {
		return true, nil
	}

	sum, err := l.opts.Hasher.ComputeFileHash(src)
	if err != nil {
		return false, l.wrap(domain.ErrTransferFailed, err, "failed to hash artifact", key)
	}
	size, err := pacfs.CopyFileAtomic(src, dst)
	if err != nil {
		return false, l.wrap(domain.ErrTransferFailed, err, "failed to copy artifact", key)
	}
	if err := l.index.Put(domain.NewArtifactRecord(key, sum, size, pkg.URL)); err != nil {
		return false, l.wrap(domain.ErrCacheUnavailable, err, "failed to update artifact index", key)
	}
	if err := l.dropExtracted(key); err != nil {
		return false, err
	}
	return true, nil
}

// MaterializeInto extracts the artifact once and links it as <targetDir>/deps/<name>.
func (l *Local) MaterializeInto(ctx context.Context, pkg *domain.Package, targetDir string) error {
	key := l.Key(pkg)
	ok, err := l.Exists(ctx, pkg)
	if err != nil {
		return err
	}
	if !ok {
		return l.errorf(domain.ErrArtifactNotFound, "artifact not in cache", key)
	}

	extracted, err := l.extract(key)
	if err != nil {
		return err
	}

	link := filepath.Join(targetDir, archive.DepsDir, pkg.Name)
	if err := os.MkdirAll(filepath.Dir(link), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create deps directory"), "path", filepath.Dir(link))
	}
	if info, err := os.Lstat(link); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "dependency path is not a link"), "path", link)
		}
		if err := os.Remove(link); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to replace dependency link"), "path", link)
		}
	}
	if err := os.Symlink(extracted, link); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to link dependency"), "path", link)
	}
	return nil
}

// extract unpacks the artifact into <root>/<key dir>/<name> unless that directory already exists.
func (l *Local) extract(key domain.ArtifactKey) (string, error) {
	parent := filepath.Join(l.root, filepath.FromSlash(key.Dir()))
	dst := filepath.Join(parent, key.Name)
	if ok, err := pacfs.Exists(dst); err != nil || ok {
		return dst, err
	}

	tmp, err := os.MkdirTemp(parent, "."+key.Name+".*.part")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create extraction directory"), "path", parent)
	}
	if err := l.opts.Packer.Extract(l.artifactPath(key), tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return "", zerr.With(err, "cache", l.entry.Name)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.RemoveAll(tmp)
		// Another extractor won the race.
		if ok, _ := pacfs.Exists(dst); ok {
			return dst, nil
		}
		return "", zerr.With(zerr.Wrap(err, "failed to move extracted artifact"), "path", dst)
	}
	return dst, nil
}

// dropExtracted removes the extracted copy of a replaced artifact so the next link re-extracts it.
func (l *Local) dropExtracted(key domain.ArtifactKey) error {
	parent := filepath.Join(l.root, filepath.FromSlash(key.Dir()))
	dst := filepath.Join(parent, key.Name)
	if ok, err := pacfs.Exists(dst); err != nil || !ok {
		return err
	}

	stale, err := os.MkdirTemp(parent, "."+key.Name+".*.stale")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create removal directory"), "path", parent)
	}
	defer func() { _ = os.RemoveAll(stale) }()
	if err := os.Rename(dst, filepath.Join(stale, key.Name)); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, "failed to remove stale extraction"), "path", dst)
	}
	return nil
}

// List returns the records of every artifact published to this tier.
func (l *Local) List() ([]domain.ArtifactRecord, error) {
	return l.index.List()
}
