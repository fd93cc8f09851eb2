// Package cache implements the cache tier backends: a local directory tree, an
// authenticated HTTP artifact repository and object store buckets.
package cache

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/lestrrat-go/backoff/v2"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	defaultRetryInterval = 250 * time.Millisecond
	maxRetryInterval     = 10 * time.Second
)

// Options carries the collaborators and settings shared by every backend.
type Options struct {
	// TempDir receives artifacts downloaded from remote tiers.
	TempDir string
	// Retries bounds the number of retries of a failed network transfer.
	Retries int
	// RetryInterval is the first backoff delay. Defaults to 250ms.
	RetryInterval time.Duration

	Packer     ports.Packer
	Hasher     ports.Hasher
	Logger     ports.Logger
	HTTPClient *http.Client
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return cleanhttp.DefaultPooledClient()
}

// tier holds the identity and the helpers common to all backends.
type tier struct {
	entry   domain.CacheEntry
	runtime domain.RuntimeTag
	opts    Options
	policy  backoff.Policy
}

func newTier(entry domain.CacheEntry, runtime domain.RuntimeTag, opts Options) tier {
	interval := opts.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	return tier{
		entry:   entry,
		runtime: runtime,
		opts:    opts,
		policy: backoff.Exponential(
			backoff.WithMinInterval(interval),
			backoff.WithMaxInterval(max(interval, maxRetryInterval)),
			backoff.WithJitterFactor(0.05),
			backoff.WithMaxRetries(max(opts.Retries, 0)+1),
		),
	}
}

// Name returns the configured tier name.
func (t *tier) Name() string {
	return t.entry.Name
}

// Kind returns the backend variant.
func (t *tier) Kind() domain.BackendKind {
	return t.entry.Kind
}

// Key returns the artifact key of pkg in this tier.
func (t *tier) Key(pkg *domain.Package) domain.ArtifactKey {
	return domain.NewArtifactKey(t.entry.OwnerID(), pkg.Dependency, t.runtime)
}

// downloadPath is where an artifact fetched from this tier is stored.
func (t *tier) downloadPath(key domain.ArtifactKey) string {
	return filepath.Join(t.opts.TempDir, "downloads", t.entry.Name, filepath.FromSlash(key.Path()))
}

// describe attaches the descriptor of a fetched artifact to pkg.
func (t *tier) describe(pkg *domain.Package, artifact string) error {
	cfg, err := t.opts.Packer.ReadDescriptor(artifact)
	if err != nil {
		return zerr.With(err, "cache", t.entry.Name)
	}
	if err := pkg.UpdateFromPackage(cfg, filepath.Dir(artifact)); err != nil {
		return err
	}
	pkg.Artifact = artifact
	return nil
}

// retry runs fn until it succeeds, fails with a non-transient error or the retries are used up.
func (t *tier) retry(ctx context.Context, op string, fn func() error) error {
	b := t.policy.Start(ctx)
	var err error
	for attempt := 0; backoff.Continue(b); attempt++ {
		err = fn()
		if err == nil || !transient(err) || attempt >= t.opts.Retries {
			return err
		}
		if t.opts.Logger != nil {
			t.opts.Logger.Warn("cache " + t.entry.Name + ": " + op + " failed, retrying (attempt " +
				strconv.Itoa(attempt+1) + " of " + strconv.Itoa(t.opts.Retries) + ")")
		}
	}
	if err == nil {
		err = zerr.With(zerr.Wrap(domain.ErrCacheUnavailable, "cache operation cancelled"), "cache", t.entry.Name)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
	}
	return err
}

func transient(err error) bool {
	return errors.Is(err, domain.ErrCacheUnavailable) || errors.Is(err, domain.ErrTransferFailed)
}

func (t *tier) errorf(sentinel error, msg string, key domain.ArtifactKey) error {
	err := zerr.With(zerr.Wrap(sentinel, msg), "cache", t.entry.Name)
	return zerr.With(err, "artifact", key.Path())
}

func (t *tier) wrap(sentinel, cause error, msg string, key domain.ArtifactKey) error {
	return t.errorf(errors.Join(sentinel, cause), msg, key)
}
