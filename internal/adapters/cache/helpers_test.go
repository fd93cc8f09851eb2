package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/adapters/archive"
	"go.trai.ch/pac/internal/adapters/cache"
	"go.trai.ch/pac/internal/adapters/config"
	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const runtimeTag domain.RuntimeTag = "26"

func newOptions(t *testing.T) cache.Options {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	return cache.Options{
		TempDir:       t.TempDir(),
		Retries:       2,
		RetryInterval: time.Millisecond,
		Packer:        archive.NewPacker(pacfs.NewWalker(), config.NewPackageLoader()),
		Hasher:        pacfs.NewHasher(),
		Logger:        log,
	}
}

// builtPackage creates a package directory with a descriptor and packs it.
func builtPackage(t *testing.T, opts cache.Options, name, version string) *domain.Package {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ebin"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pac.yaml"),
		[]byte("name: "+name+"\ntag: "+version+"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ebin", name+".beam"), []byte("beam"), 0o600))

	pkg := domain.NewPackage(domain.Dependency{Name: name, Version: version})
	pkg.Path = dir
	require.NoError(t, opts.Packer.Pack(context.Background(), pkg))
	return pkg
}

func localEntry(t *testing.T) domain.CacheEntry {
	t.Helper()
	return domain.CacheEntry{Name: "local_cache", Kind: domain.BackendLocal, URL: "file://" + t.TempDir()}
}
