package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"sync"

	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
)

// ErrObjectNotFound is returned by an ObjectClient for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// ObjectClient is the subset of an object store API used by ObjectStore.
type ObjectClient interface {
	// Stat reports whether key exists.
	Stat(ctx context.Context, key string) (bool, error)
	// Get opens key for reading. A missing key yields ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Put uploads r to key; the object is visible only once the upload completes.
	Put(ctx context.Context, key string, r io.Reader) error
	// EnsureBucket creates the bucket unless it is already owned by the caller.
	EnsureBucket(ctx context.Context) error
}

var _ ports.Backend = (*ObjectStore)(nil)

// ObjectStore keeps artifacts as objects named <prefix>/<key path>.
type ObjectStore struct {
	tier
	client ObjectClient

	mu            sync.Mutex
	bucketEnsured bool
}

// NewObjectStore creates the tier on top of an object store client.
func NewObjectStore(entry domain.CacheEntry, runtime domain.RuntimeTag, client ObjectClient, opts Options) *ObjectStore {
	return &ObjectStore{tier: newTier(entry, runtime, opts), client: client}
}

func (o *ObjectStore) objectKey(key domain.ArtifactKey) string {
	if o.entry.Prefix == "" {
		return key.Path()
	}
	return path.Join(o.entry.Prefix, key.Path())
}

// Exists stats the object.
func (o *ObjectStore) Exists(ctx context.Context, pkg *domain.Package) (bool, error) {
	if !o.runtime.Known() {
		return false, nil
	}
	key := o.Key(pkg)

	var found bool
	err := o.retry(ctx, "exists", func() error {
		ok, err := o.client.Stat(ctx, o.objectKey(key))
		if err != nil {
			return o.wrap(domain.ErrCacheUnavailable, err, "failed to stat object", key)
		}
		found = ok
		return nil
	})
	return found, err
}

// Fetch downloads the object into the temp directory and reads its descriptor.
func (o *ObjectStore) Fetch(ctx context.Context, pkg *domain.Package) error {
	key := o.Key(pkg)
	if !o.runtime.Known() {
		return o.errorf(domain.ErrArtifactNotFound, "runtime tag unknown", key)
	}
	dst := o.downloadPath(key)

	err := o.retry(ctx, "fetch", func() error {
		r, err := o.client.Get(ctx, o.objectKey(key))
		if errors.Is(err, ErrObjectNotFound) {
			return o.errorf(domain.ErrArtifactNotFound, "object not in bucket", key)
		}
		if err != nil {
			return o.wrap(domain.ErrCacheUnavailable, err, "failed to open object", key)
		}
		defer r.Close() //nolint:errcheck // Read-only stream

		if _, err := pacfs.WriteAtomic(dst, r); err != nil {
			return o.wrap(domain.ErrTransferFailed, err, "download interrupted", key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return o.describe(pkg, dst)
}

// Publish uploads the artifact, creating the bucket on first use.
func (o *ObjectStore) Publish(ctx context.Context, pkg *domain.Package, overwrite bool) (bool, error) {
	key := o.Key(pkg)
	if !o.runtime.Known() {
		return false, o.errorf(domain.ErrUnknownRuntime, "cannot publish without a runtime tag", key)
	}
	if !overwrite {
		ok, err := o.Exists(ctx, pkg)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	if err := o.ensureBucket(ctx, key); err != nil {
		return false, err
	}

	src := pkg.ArtifactPath()
	err := o.retry(ctx, "upload", func() error {
		f, err := os.Open(src) //nolint:gosec // Path is controlled by caller
		if err != nil {
			return o.wrap(domain.ErrTransferFailed, err, "failed to open artifact", key)
		}
		defer f.Close() //nolint:errcheck // Read-only file

		if err := o.client.Put(ctx, o.objectKey(key), f); err != nil {
			return o.wrap(domain.ErrTransferFailed, err, "upload interrupted", key)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (o *ObjectStore) ensureBucket(ctx context.Context, key domain.ArtifactKey) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.bucketEnsured {
		return nil
	}
	err := o.retry(ctx, "create bucket", func() error {
		if err := o.client.EnsureBucket(ctx); err != nil {
			return o.wrap(domain.ErrCacheUnavailable, err, "failed to create bucket", key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	o.bucketEnsured = true
	return nil
}

// MaterializeInto is not supported; object store artifacts are linked after promotion to the local tier.
func (o *ObjectStore) MaterializeInto(_ context.Context, pkg *domain.Package, _ string) error {
	return o.errorf(domain.ErrNotLinkable, "object store tiers cannot link packages", o.Key(pkg))
}
