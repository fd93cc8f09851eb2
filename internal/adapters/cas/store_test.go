package cas_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/adapters/cas"
	"go.trai.ch/pac/internal/core/domain"
)

func newRecord(name, version string) domain.ArtifactRecord {
	key := domain.NewArtifactKey("pac", domain.Dependency{Name: name, Version: version}, "26")
	return domain.NewArtifactRecord(key, "0011223344556677", 42, "repo-1")
}

func TestStore_PutAndGet(t *testing.T) {
	store, err := cas.NewStore(filepath.Join(t.TempDir(), cas.IndexFile))
	require.NoError(t, err)

	record := newRecord("libx", "v1")
	require.NoError(t, store.Put(record))

	got, err := store.Get(record.Path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "libx", got.Name)
	assert.Equal(t, "0011223344556677", got.Checksum)
	assert.Equal(t, "repo-1", got.Source)

	missing, err := store.Get("pac/other/v1/26/other.cp")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", cas.IndexFile)

	store1, err := cas.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Put(newRecord("libx", "v1")))
	require.NoError(t, store1.Put(newRecord("liby", "v2")))

	store2, err := cas.NewStore(path)
	require.NoError(t, err)

	records, err := store2.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "libx", records[0].Name)
	assert.Equal(t, "liby", records[1].Name)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), cas.IndexFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := cas.NewStore(path)
	assert.Error(t, err)
}

func TestStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), cas.IndexFile)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := cas.NewStore(path)
	require.NoError(t, err)

	records, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}
