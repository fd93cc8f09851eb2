package cache

import (
	"errors"

	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BackendFactory = (*Factory)(nil)

// Factory builds backends for configured cache entries.
type Factory struct {
	opts Options
}

// NewFactory creates a Factory sharing opts between every backend it builds.
func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts}
}

// New validates entry and creates the backend for its kind.
func (f *Factory) New(entry domain.CacheEntry, runtime domain.RuntimeTag) (ports.Backend, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	switch entry.Kind {
	case domain.BackendLocal:
		return NewLocal(entry, runtime, f.opts)
	case domain.BackendRemoteRepository:
		return NewRemoteRepository(entry, runtime, f.opts), nil
	case domain.BackendObjectStore:
		client, err := newObjectClient(entry)
		if err != nil {
			return nil, err
		}
		return NewObjectStore(entry, runtime, client, f.opts), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "unknown cache type"), "cache", entry.Name)
	}
}

func newObjectClient(entry domain.CacheEntry) (ObjectClient, error) {
	switch entry.ProviderName() {
	case domain.ProviderB2:
		return NewB2Client(entry), nil
	default:
		client, err := NewS3Client(entry)
		if err != nil {
			err = zerr.With(zerr.Wrap(errors.Join(domain.ErrConfiguration, err), "failed to create s3 client"), "cache", entry.Name)
			return nil, err
		}
		return client, nil
	}
}
