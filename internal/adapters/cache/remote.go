package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
)

// Artifactory-compatible request headers.
const (
	HeaderAPIKey         = "X-JFrog-Art-Api"
	HeaderChecksumSHA256 = "X-Checksum-Sha256"
)

var _ ports.Backend = (*RemoteRepository)(nil)

// RemoteRepository is an authenticated HTTP artifact repository. Artifacts are
// addressed as <url>/<key path>.
type RemoteRepository struct {
	tier
	baseURL  string
	client   *http.Client
	warnOnce sync.Once
}

// NewRemoteRepository creates the tier for an Artifactory-style repository.
func NewRemoteRepository(entry domain.CacheEntry, runtime domain.RuntimeTag, opts Options) *RemoteRepository {
	return &RemoteRepository{
		tier:    newTier(entry, runtime, opts),
		baseURL: strings.TrimSuffix(entry.URL, "/"),
		client:  opts.httpClient(),
	}
}

func (r *RemoteRepository) url(p string) string {
	return r.baseURL + "/" + p
}

func (r *RemoteRepository) do(ctx context.Context, method, url string, body io.Reader, size int64, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		req.ContentLength = size
	}
	for k, v := range header {
		req.Header[k] = v
	}
	r.authorize(req)
	return r.client.Do(req)
}

func (r *RemoteRepository) authorize(req *http.Request) {
	switch c := r.entry.Credentials.(type) {
	case domain.BasicAuth:
		req.SetBasicAuth(c.Username, c.Password)
	case domain.APIKey:
		req.Header.Set(HeaderAPIKey, c.Key)
	default:
		return
	}
	if !r.entry.Secure() && r.opts.Logger != nil {
		r.warnOnce.Do(func() {
			r.opts.Logger.Warn("cache " + r.entry.Name + " sends credentials over plain http")
		})
	}
}

// statusError maps an unexpected response to a domain error.
func (r *RemoteRepository) statusError(res *http.Response, key domain.ArtifactKey) error {
	var sentinel error
	switch res.StatusCode {
	case http.StatusNotFound:
		sentinel = domain.ErrArtifactNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = domain.ErrConfiguration
	default:
		sentinel = domain.ErrCacheUnavailable
	}
	return r.errorf(sentinel, "unexpected response "+strconv.Itoa(res.StatusCode), key)
}

func drain(res *http.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

// Exists issues a HEAD request for the artifact.
func (r *RemoteRepository) Exists(ctx context.Context, pkg *domain.Package) (bool, error) {
	if !r.runtime.Known() {
		return false, nil
	}
	key := r.Key(pkg)

	var found bool
	err := r.retry(ctx, "exists", func() error {
		res, err := r.do(ctx, http.MethodHead, r.url(key.Path()), nil, 0, nil)
		if err != nil {
			return r.wrap(domain.ErrCacheUnavailable, err, "request failed", key)
		}
		defer drain(res)

		switch res.StatusCode {
		case http.StatusOK:
			found = true
			return nil
		case http.StatusNotFound:
			found = false
			return nil
		default:
			return r.statusError(res, key)
		}
	})
	return found, err
}

// Fetch downloads the artifact into the temp directory and reads its descriptor.
func (r *RemoteRepository) Fetch(ctx context.Context, pkg *domain.Package) error {
	key := r.Key(pkg)
	if !r.runtime.Known() {
		return r.errorf(domain.ErrArtifactNotFound, "runtime tag unknown", key)
	}
	dst := r.downloadPath(key)

	err := r.retry(ctx, "fetch", func() error {
		res, err := r.do(ctx, http.MethodGet, r.url(key.Path()), nil, 0, nil)
		if err != nil {
			return r.wrap(domain.ErrCacheUnavailable, err, "request failed", key)
		}
		defer drain(res)

		if res.StatusCode != http.StatusOK {
			return r.statusError(res, key)
		}
		if _, err := pacfs.WriteAtomic(dst, res.Body); err != nil {
			return r.wrap(domain.ErrTransferFailed, err, "download interrupted", key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.describe(pkg, dst)
}

// Publish creates the artifact folder and uploads the artifact with its SHA-256 checksum.
func (r *RemoteRepository) Publish(ctx context.Context, pkg *domain.Package, overwrite bool) (bool, error) {
	key := r.Key(pkg)
	if !r.runtime.Known() {
		return false, r.errorf(domain.ErrUnknownRuntime, "cannot publish without a runtime tag", key)
	}
	if !overwrite {
		ok, err := r.Exists(ctx, pkg)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	src := pkg.ArtifactPath()
	sum, size, err := sha256File(src)
	if err != nil {
		return false, r.wrap(domain.ErrTransferFailed, err, "failed to read artifact", key)
	}

	if err := r.retry(ctx, "create folder", func() error { return r.mkdir(ctx, key) }); err != nil {
		return false, err
	}

	err = r.retry(ctx, "upload", func() error {
		f, err := os.Open(src) //nolint:gosec // Path is controlled by caller
		if err != nil {
			return r.wrap(domain.ErrTransferFailed, err, "failed to open artifact", key)
		}
		defer f.Close() //nolint:errcheck // Read-only file

		header := http.Header{}
		header.Set(HeaderChecksumSHA256, sum)
		res, err := r.do(ctx, http.MethodPut, r.url(key.Path()), f, size, header)
		if err != nil {
			return r.wrap(domain.ErrTransferFailed, err, "upload interrupted", key)
		}
		defer drain(res)

		switch res.StatusCode {
		case http.StatusOK, http.StatusCreated:
			return nil
		default:
			return r.statusError(res, key)
		}
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// mkdir creates the artifact folder. A folder that already exists is not an error.
func (r *RemoteRepository) mkdir(ctx context.Context, key domain.ArtifactKey) error {
	res, err := r.do(ctx, http.MethodPut, r.url(key.Dir()+"/"), http.NoBody, 0, nil)
	if err != nil {
		return r.wrap(domain.ErrCacheUnavailable, err, "request failed", key)
	}
	defer drain(res)

	switch res.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return r.statusError(res, key)
	}
}

// MaterializeInto is not supported; remote artifacts are linked after promotion to the local tier.
func (r *RemoteRepository) MaterializeInto(_ context.Context, pkg *domain.Package, _ string) error {
	return r.errorf(domain.ErrNotLinkable, "remote tiers cannot link packages", r.Key(pkg))
}

func sha256File(path string) (string, int64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", 0, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, errors.Join(domain.ErrTransferFailed, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
