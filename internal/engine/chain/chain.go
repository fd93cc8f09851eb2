// Package chain composes the local cache tier with the configured remote tiers.
package chain

import (
	"context"
	"errors"

	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Remote is a remote tier of the chain.
type Remote struct {
	Backend ports.Backend
	// Push publishes every freshly built artifact to this tier.
	Push bool
}

// PublishOptions control AddPackage.
type PublishOptions struct {
	// Target names the tier to publish to. Empty means the local tier.
	Target string
	// Rewrite replaces an artifact that already exists in the target tier.
	Rewrite bool
	// LinkInto, when set, links the package into this build directory after publishing.
	LinkInto string
}

// Chain looks artifacts up in the local tier first, then in every remote tier
// in configuration order, and promotes remote hits into the local tier.
type Chain struct {
	local   ports.Backend
	remotes []Remote
	byName  map[string]ports.Backend

	logger  ports.Logger
	metrics ports.Metrics
	group   singleflight.Group
}

// New creates a Chain. local must be a local tier and tier names must be unique.
func New(local ports.Backend, remotes []Remote, logger ports.Logger, metrics ports.Metrics) (*Chain, error) {
	if local == nil || local.Kind() != domain.BackendLocal {
		return nil, zerr.Wrap(domain.ErrConfiguration, "cache chain needs a local tier")
	}

	c := &Chain{
		local:   local,
		remotes: remotes,
		byName:  map[string]ports.Backend{local.Name(): local},
		logger:  logger,
		metrics: metrics,
	}
	for _, r := range remotes {
		if r.Backend.Kind() == domain.BackendLocal {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "only one local tier is allowed"), "cache", r.Backend.Name())
		}
		if _, ok := c.byName[r.Backend.Name()]; ok {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "duplicate cache name"), "cache", r.Backend.Name())
		}
		c.byName[r.Backend.Name()] = r.Backend
	}
	return c, nil
}

// FromConfig creates the backends of every configured cache tier and chains them.
func FromConfig(
	cfg *domain.GlobalConfig,
	factory ports.BackendFactory,
	runtime domain.RuntimeTag,
	logger ports.Logger,
	metrics ports.Metrics,
) (*Chain, error) {
	entry, ok := cfg.LocalCache()
	if !ok {
		return nil, zerr.Wrap(domain.ErrConfiguration, "no local cache configured")
	}
	local, err := factory.New(entry, runtime)
	if err != nil {
		return nil, err
	}

	var remotes []Remote
	for _, entry := range cfg.RemoteCaches() {
		backend, err := factory.New(entry, runtime)
		if err != nil {
			return nil, err
		}
		remotes = append(remotes, Remote{Backend: backend, Push: entry.Push})
	}
	return New(local, remotes, logger, metrics)
}

// Local returns the local tier.
func (c *Chain) Local() ports.Backend {
	return c.local
}

// Key returns the artifact key of pkg in the local tier.
func (c *Chain) Key(pkg *domain.Package) domain.ArtifactKey {
	return c.local.Key(pkg)
}

// Tier returns the tier configured under name.
func (c *Chain) Tier(name string) (ports.Backend, bool) {
	b, ok := c.byName[name]
	return b, ok
}

// Tiers returns the local tier followed by the remote tiers in lookup order.
func (c *Chain) Tiers() []ports.Backend {
	tiers := make([]ports.Backend, 0, len(c.remotes)+1)
	tiers = append(tiers, c.local)
	for _, r := range c.remotes {
		tiers = append(tiers, r.Backend)
	}
	return tiers
}

// Exists reports whether the local tier holds pkg. Remote tiers are not consulted.
func (c *Chain) Exists(ctx context.Context, pkg *domain.Package) (bool, error) {
	return c.local.Exists(ctx, pkg)
}

// Resolve materializes pkg from the first tier holding it. A remote hit is promoted
// into the local tier. ErrCacheMiss means no tier holds the artifact.
// Concurrent resolves of one artifact share a single lookup.
func (c *Chain) Resolve(ctx context.Context, pkg *domain.Package) error {
	v, err, _ := c.group.Do(c.Key(pkg).Path(), func() (any, error) {
		resolved := domain.NewPackage(pkg.Dependency)
		return resolved, c.resolve(ctx, resolved)
	})
	if err != nil {
		return err
	}

	resolved := v.(*domain.Package) //nolint:forcetypeassert // Only *domain.Package is stored
	if err := pkg.UpdateFromPackage(resolved.Config, resolved.Path); err != nil {
		return err
	}
	pkg.Artifact = resolved.Artifact
	return nil
}

func (c *Chain) resolve(ctx context.Context, pkg *domain.Package) error {
	overwrite := false

	ok, err := c.local.Exists(ctx, pkg)
	switch {
	case err != nil:
		c.skip(c.local, err)
	case ok:
		err := c.local.Fetch(ctx, pkg)
		if err == nil {
			c.metrics.CacheHit(c.local.Name())
			return nil
		}
		if !absorbable(err) {
			return err
		}
		c.skip(c.local, err)
		overwrite = true
	}

	for _, r := range c.remotes {
		tier := r.Backend
		ok, err := tier.Exists(ctx, pkg)
		if err != nil {
			if !absorbable(err) {
				return err
			}
			c.skip(tier, err)
			continue
		}
		if !ok {
			continue
		}
		if err := tier.Fetch(ctx, pkg); err != nil {
			if !absorbable(err) {
				return err
			}
			c.skip(tier, err)
			continue
		}
		c.metrics.CacheHit(tier.Name())

		if err := c.addFetched(ctx, pkg, overwrite); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to promote artifact"), "cache", tier.Name())
		}
		c.metrics.Promoted(tier.Name())
		c.logger.Info("promoted " + pkg.Ref() + " from " + tier.Name())
		return nil
	}

	c.metrics.CacheMiss()
	return zerr.With(zerr.Wrap(domain.ErrCacheMiss, "no cache tier holds the artifact"), "package", pkg.Ref())
}

// absorbable reports whether a tier failure lets the lookup continue with the next tier.
func absorbable(err error) bool {
	return errors.Is(err, domain.ErrCacheUnavailable) ||
		errors.Is(err, domain.ErrTransferFailed) ||
		errors.Is(err, domain.ErrArtifactNotFound)
}

func (c *Chain) skip(tier ports.Backend, err error) {
	c.metrics.TierFailure(tier.Name())
	c.logger.Warn("skipping cache " + tier.Name() + ": " + message(err))
}

func message(err error) string {
	var zErr *zerr.Error
	if errors.As(err, &zErr) {
		return zErr.Message()
	}
	return err.Error()
}

// AddFetched registers an artifact fetched from a remote tier in the local tier.
func (c *Chain) AddFetched(ctx context.Context, pkg *domain.Package) error {
	return c.addFetched(ctx, pkg, false)
}

// addFetched overwrites the local copy when it was found to be corrupt.
func (c *Chain) addFetched(ctx context.Context, pkg *domain.Package, overwrite bool) error {
	_, err := c.local.Publish(ctx, pkg, overwrite)
	return err
}

// AddPackage publishes pkg to the tier named in opts.
func (c *Chain) AddPackage(ctx context.Context, pkg *domain.Package, opts PublishOptions) error {
	tier := c.local
	if opts.Target != "" {
		var ok bool
		if tier, ok = c.byName[opts.Target]; !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownCache, "cache is not configured"), "cache", opts.Target)
		}
	}

	if _, err := tier.Publish(ctx, pkg, opts.Rewrite); err != nil {
		return err
	}
	c.metrics.Published(tier.Name())

	if opts.LinkInto != "" {
		return c.LinkPackage(ctx, pkg, opts.LinkInto)
	}
	return nil
}

// PublishBuilt publishes a freshly built artifact to the local tier, then to every
// remote tier marked for push. Remote failures are logged.
func (c *Chain) PublishBuilt(ctx context.Context, pkg *domain.Package) error {
	if _, err := c.local.Publish(ctx, pkg, false); err != nil {
		return err
	}
	c.metrics.Published(c.local.Name())

	for _, r := range c.remotes {
		if !r.Push {
			continue
		}
		if _, err := r.Backend.Publish(ctx, pkg, false); err != nil {
			c.metrics.TierFailure(r.Backend.Name())
			c.logger.Warn("failed to push " + pkg.Ref() + " to " + r.Backend.Name() + ": " + message(err))
			continue
		}
		c.metrics.Published(r.Backend.Name())
	}
	return nil
}

// LinkPackage makes dep available to the build in buildDir.
func (c *Chain) LinkPackage(ctx context.Context, dep *domain.Package, buildDir string) error {
	return c.local.MaterializeInto(ctx, dep, buildDir)
}
