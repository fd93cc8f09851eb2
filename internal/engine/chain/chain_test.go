package chain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/pac/internal/core/ports/mocks"
	"go.trai.ch/pac/internal/engine/chain"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newBackend(ctrl *gomock.Controller, name string, kind domain.BackendKind) *mocks.MockBackend {
	b := mocks.NewMockBackend(ctrl)
	b.EXPECT().Name().Return(name).AnyTimes()
	b.EXPECT().Kind().Return(kind).AnyTimes()
	b.EXPECT().Key(gomock.Any()).DoAndReturn(func(p *domain.Package) domain.ArtifactKey {
		return domain.NewArtifactKey("pac", p.Dependency, "26")
	}).AnyTimes()
	return b
}

func fetchInto(_ context.Context, p *domain.Package) error {
	return p.UpdateFromPackage(&domain.PackageConfig{Name: p.Name, Version: p.Version}, "/tmp/"+p.Name)
}

type fixture struct {
	local   *mocks.MockBackend
	repo1   *mocks.MockBackend
	repo2   *mocks.MockBackend
	logger  *mocks.MockLogger
	metrics *mocks.MockMetrics
	chain   *chain.Chain
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		local:   newBackend(ctrl, "local_cache", domain.BackendLocal),
		repo1:   newBackend(ctrl, "repo-1", domain.BackendRemoteRepository),
		repo2:   newBackend(ctrl, "bucket", domain.BackendObjectStore),
		logger:  mocks.NewMockLogger(ctrl),
		metrics: mocks.NewMockMetrics(ctrl),
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	c, err := chain.New(f.local, []chain.Remote{
		{Backend: f.repo1, Push: true},
		{Backend: f.repo2},
	}, f.logger, f.metrics)
	require.NoError(t, err)
	f.chain = c
	return f
}

func libX() *domain.Package {
	return domain.NewPackage(domain.Dependency{Name: "libx", Version: "v1", URL: "https://git.example.com/libx"})
}

func TestChain_New(t *testing.T) {
	ctrl := gomock.NewController(t)
	local := newBackend(ctrl, "local_cache", domain.BackendLocal)
	remote := newBackend(ctrl, "repo-1", domain.BackendRemoteRepository)

	_, err := chain.New(remote, nil, nil, nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = chain.New(local, []chain.Remote{{Backend: remote}, {Backend: remote}}, nil, nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)

	c, err := chain.New(local, []chain.Remote{{Backend: remote}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"local_cache", "repo-1"}, names(c))

	tier, ok := c.Tier("repo-1")
	assert.True(t, ok)
	assert.Equal(t, remote, tier)
	_, ok = c.Tier("nope")
	assert.False(t, ok)
}

func names(c *chain.Chain) []string {
	var out []string
	for _, tier := range c.Tiers() {
		out = append(out, tier.Name())
	}
	return out
}

func TestChain_Exists_LocalOnly(t *testing.T) {
	f := newFixture(t)
	pkg := libX()

	f.local.EXPECT().Exists(gomock.Any(), pkg).Return(false, nil)

	ok, err := f.chain.Exists(context.Background(), pkg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChain_Resolve_LocalHit(t *testing.T) {
	f := newFixture(t)
	pkg := libX()

	f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil)
	f.local.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(fetchInto)
	f.metrics.EXPECT().CacheHit("local_cache")

	require.NoError(t, f.chain.Resolve(context.Background(), pkg))
	assert.True(t, pkg.Materialized())
	assert.Equal(t, "/tmp/libx", pkg.Path)
}

func TestChain_Resolve_PromotesRemoteHit(t *testing.T) {
	f := newFixture(t)
	pkg := libX()

	gomock.InOrder(
		f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil),
		f.repo1.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil),
		f.repo2.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil),
		f.repo2.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(fetchInto),
		f.local.EXPECT().Publish(gomock.Any(), gomock.Any(), false).Return(true, nil),
	)
	f.metrics.EXPECT().CacheHit("bucket")
	f.metrics.EXPECT().Promoted("bucket")

	require.NoError(t, f.chain.Resolve(context.Background(), pkg))
	assert.True(t, pkg.Materialized())
}

func TestChain_Resolve_SkipsUnavailableTier(t *testing.T) {
	f := newFixture(t)

	f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
	f.repo1.EXPECT().Exists(gomock.Any(), gomock.Any()).
		Return(false, zerr.Wrap(domain.ErrCacheUnavailable, "connection refused"))
	f.repo2.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo2.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		Return(zerr.Wrap(domain.ErrTransferFailed, "connection reset"))
	f.logger.EXPECT().Warn(gomock.Any()).Times(2)
	f.metrics.EXPECT().TierFailure("repo-1")
	f.metrics.EXPECT().TierFailure("bucket")
	f.metrics.EXPECT().CacheMiss()

	err := f.chain.Resolve(context.Background(), libX())
	require.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestChain_Resolve_CorruptLocalCopyIsReplaced(t *testing.T) {
	f := newFixture(t)

	f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil)
	f.local.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(zerr.Wrap(domain.ErrTransferFailed, "checksum mismatch"))
	f.repo1.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo1.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(fetchInto)
	f.local.EXPECT().Publish(gomock.Any(), gomock.Any(), true).Return(true, nil)
	f.logger.EXPECT().Warn(gomock.Any())
	f.metrics.EXPECT().TierFailure("local_cache")
	f.metrics.EXPECT().CacheHit("repo-1")
	f.metrics.EXPECT().Promoted("repo-1")

	require.NoError(t, f.chain.Resolve(context.Background(), libX()))
}

func TestChain_Resolve_ConfigurationErrorPropagates(t *testing.T) {
	f := newFixture(t)

	f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil)
	f.repo1.EXPECT().Exists(gomock.Any(), gomock.Any()).
		Return(false, zerr.Wrap(domain.ErrConfiguration, "unexpected response 401"))

	err := f.chain.Resolve(context.Background(), libX())
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestChain_Resolve_CollapsesConcurrentLookups(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		release := make(chan struct{})

		f.local.EXPECT().Exists(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *domain.Package) (bool, error) {
			<-release
			return false, nil
		}).Times(1)
		f.repo1.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil).Times(1)
		f.repo1.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(fetchInto).Times(1)
		f.local.EXPECT().Publish(gomock.Any(), gomock.Any(), false).Return(true, nil).Times(1)
		f.metrics.EXPECT().CacheHit("repo-1")
		f.metrics.EXPECT().Promoted("repo-1")

		const callers = 4
		pkgs := make([]*domain.Package, callers)
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			pkgs[i] = libX()
			wg.Go(func() {
				errs[i] = f.chain.Resolve(context.Background(), pkgs[i])
			})
		}

		synctest.Wait()
		close(release)
		wg.Wait()

		for i := range callers {
			require.NoError(t, errs[i])
			assert.True(t, pkgs[i].Materialized())
		}
	})
}

func TestChain_AddPackage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pkg := libX()

	err := f.chain.AddPackage(ctx, pkg, chain.PublishOptions{Target: "nope"})
	require.ErrorIs(t, err, domain.ErrUnknownCache)

	f.local.EXPECT().Publish(gomock.Any(), pkg, false).Return(true, nil)
	f.metrics.EXPECT().Published("local_cache")
	require.NoError(t, f.chain.AddPackage(ctx, pkg, chain.PublishOptions{}))

	gomock.InOrder(
		f.repo2.EXPECT().Publish(gomock.Any(), pkg, true).Return(true, nil),
		f.local.EXPECT().MaterializeInto(gomock.Any(), pkg, "/work/app").Return(nil),
	)
	f.metrics.EXPECT().Published("bucket")
	require.NoError(t, f.chain.AddPackage(ctx, pkg, chain.PublishOptions{
		Target:   "bucket",
		Rewrite:  true,
		LinkInto: "/work/app",
	}))
}

func TestChain_PublishBuilt(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes to marked remotes", func(t *testing.T) {
		f := newFixture(t)
		pkg := libX()

		f.local.EXPECT().Publish(gomock.Any(), pkg, false).Return(true, nil)
		f.repo1.EXPECT().Publish(gomock.Any(), pkg, false).Return(false, zerr.Wrap(domain.ErrCacheUnavailable, "down"))
		f.logger.EXPECT().Warn(gomock.Any())
		f.metrics.EXPECT().Published("local_cache")
		f.metrics.EXPECT().TierFailure("repo-1")

		require.NoError(t, f.chain.PublishBuilt(ctx, pkg))
	})

	t.Run("local failure is fatal", func(t *testing.T) {
		f := newFixture(t)
		pkg := libX()

		f.local.EXPECT().Publish(gomock.Any(), pkg, false).Return(false, errors.New("disk full"))

		require.Error(t, f.chain.PublishBuilt(ctx, pkg))
	})
}

func TestChain_LinkPackage(t *testing.T) {
	f := newFixture(t)
	pkg := libX()

	f.local.EXPECT().MaterializeInto(gomock.Any(), pkg, "/work/app").Return(nil)

	require.NoError(t, f.chain.LinkPackage(context.Background(), pkg, "/work/app"))
}

func TestFromConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	factory := mocks.NewMockBackendFactory(ctrl)

	cfg := &domain.GlobalConfig{Caches: []domain.CacheEntry{
		{Name: "repo-1", Kind: domain.BackendRemoteRepository, Push: true},
		{Name: "local_cache", Kind: domain.BackendLocal},
	}}
	factory.EXPECT().New(gomock.Any(), domain.RuntimeTag("26")).DoAndReturn(
		func(entry domain.CacheEntry, _ domain.RuntimeTag) (ports.Backend, error) {
			return newBackend(ctrl, entry.Name, entry.Kind), nil
		}).Times(2)

	c, err := chain.FromConfig(cfg, factory, "26", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"local_cache", "repo-1"}, names(c))
}
