package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/core/domain"
)

func TestParseBackendKind(t *testing.T) {
	tests := []struct {
		in   string
		want domain.BackendKind
	}{
		{"local", domain.BackendLocal},
		{"remote-repository", domain.BackendRemoteRepository},
		{"artifactory", domain.BackendRemoteRepository},
		{"object-store", domain.BackendObjectStore},
		{"S3", domain.BackendObjectStore},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseBackendKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := domain.ParseBackendKind("ftp")
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCacheEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   domain.CacheEntry
		wantErr bool
	}{
		{
			name:  "local",
			entry: domain.CacheEntry{Name: "local", Kind: domain.BackendLocal, URL: "file:///tmp/cache"},
		},
		{
			name:    "local without path",
			entry:   domain.CacheEntry{Name: "local", Kind: domain.BackendLocal},
			wantErr: true,
		},
		{
			name: "remote with password",
			entry: domain.CacheEntry{
				Name: "repo", Kind: domain.BackendRemoteRepository, URL: "https://repo",
				Credentials: domain.BasicAuth{Username: "u", Password: "p"},
			},
		},
		{
			name: "remote with api key",
			entry: domain.CacheEntry{
				Name: "repo", Kind: domain.BackendRemoteRepository, URL: "https://repo",
				Credentials: domain.APIKey{Username: "u", Key: "k"},
			},
		},
		{
			name: "remote without secret",
			entry: domain.CacheEntry{
				Name: "repo", Kind: domain.BackendRemoteRepository, URL: "https://repo",
				Credentials: domain.BasicAuth{Username: "u"},
			},
			wantErr: true,
		},
		{
			name: "remote without username",
			entry: domain.CacheEntry{
				Name: "repo", Kind: domain.BackendRemoteRepository, URL: "https://repo",
				Credentials: domain.APIKey{Key: "k"},
			},
			wantErr: true,
		},
		{
			name: "remote without credentials",
			entry: domain.CacheEntry{
				Name: "repo", Kind: domain.BackendRemoteRepository, URL: "https://repo",
			},
			wantErr: true,
		},
		{
			name: "object store",
			entry: domain.CacheEntry{
				Name: "bucket", Kind: domain.BackendObjectStore, Bucket: "artifacts",
				Credentials: domain.AccessKeyPair{AccessKeyID: "a", SecretAccessKey: "s"},
			},
		},
		{
			name: "object store with unknown provider",
			entry: domain.CacheEntry{
				Name: "bucket", Kind: domain.BackendObjectStore, Bucket: "artifacts", Provider: "ftp",
				Credentials: domain.AccessKeyPair{AccessKeyID: "a", SecretAccessKey: "s"},
			},
			wantErr: true,
		},
		{
			name: "object store without keys",
			entry: domain.CacheEntry{
				Name: "bucket", Kind: domain.BackendObjectStore, Bucket: "artifacts",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCacheEntry_OwnerID(t *testing.T) {
	remote := domain.CacheEntry{Credentials: domain.APIKey{Username: "alice", Key: "k"}}
	assert.Equal(t, "alice", remote.OwnerID())

	local := domain.CacheEntry{}
	assert.Equal(t, domain.DefaultOwner, local.OwnerID())

	owned := domain.CacheEntry{Owner: "team"}
	assert.Equal(t, "team", owned.OwnerID())
}

func TestGlobalConfig_Validate(t *testing.T) {
	local := domain.CacheEntry{Name: "local", Kind: domain.BackendLocal, URL: "/tmp/cache"}
	repo := domain.CacheEntry{
		Name: "repo", Kind: domain.BackendRemoteRepository, URL: "http://repo",
		Credentials: domain.BasicAuth{Username: "u", Password: "p"},
	}

	cfg := domain.GlobalConfig{Caches: []domain.CacheEntry{local, repo}}
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.RemoteCaches(), 1)

	noLocal := domain.GlobalConfig{Caches: []domain.CacheEntry{repo}}
	require.ErrorIs(t, noLocal.Validate(), domain.ErrConfiguration)

	dup := domain.GlobalConfig{Caches: []domain.CacheEntry{local, repo, repo}}
	require.ErrorIs(t, dup.Validate(), domain.ErrConfiguration)
}
