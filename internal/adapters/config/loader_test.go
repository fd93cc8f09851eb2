package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/adapters/config"
	"go.trai.ch/pac/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPackageLoader_LoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pac.yaml", `
name: app
tag: 1.0.0
app_vsn: 1.0.0
url: https://git.example.com/app.git
deps:
  - name: libx
    tag: v1
    url: https://git.example.com/libx.git
  - name: liby
    tag: v2
build_vars: [debug_info]
prebuild:
  - shell: make gen
  - cmd: [rebar3, get-deps]
`)

	cfg, err := config.NewPackageLoader().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "1.0.0", cfg.AppVersion)
	require.Len(t, cfg.Deps, 2)
	assert.Equal(t, domain.Dependency{Name: "libx", Version: "v1", URL: "https://git.example.com/libx.git"}, cfg.Deps[0])
	assert.Equal(t, "liby", cfg.Deps[1].Name)
	assert.Equal(t, []string{"debug_info"}, cfg.BuildVars)
	require.Len(t, cfg.Prebuild, 2)
	assert.Equal(t, []string{"sh", "-c", "make gen"}, cfg.Prebuild[0].Command)
	assert.Equal(t, []string{"rebar3", "get-deps"}, cfg.Prebuild[1].Command)
}

func TestPackageLoader_LoadHCL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pac.hcl", `
name       = "app"
tag        = "1.0.0"
build_vars = ["debug_info"]

dep "libx" {
  tag = "v1"
  url = "https://git.example.com/libx.git"
}

dep "liby" {
  tag = "v2"
}

prebuild {
  cmd = ["make", "gen"]
}
`)

	cfg, err := config.NewPackageLoader().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "app", cfg.Name)
	assert.Equal(t, "1.0.0", cfg.Version)
	require.Len(t, cfg.Deps, 2)
	assert.Equal(t, "libx", cfg.Deps[0].Name)
	assert.Equal(t, "v1", cfg.Deps[0].Version)
	assert.Equal(t, "liby", cfg.Deps[1].Name)
	assert.Equal(t, []string{"debug_info"}, cfg.BuildVars)
	require.Len(t, cfg.Prebuild, 1)
	assert.Equal(t, []string{"make", "gen"}, cfg.Prebuild[0].Command)
}

func TestPackageLoader_Errors(t *testing.T) {
	loader := config.NewPackageLoader()

	t.Run("missing descriptor", func(t *testing.T) {
		_, err := loader.Load(t.TempDir())
		require.ErrorIs(t, err, domain.ErrPackageConfigNotFound)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := loader.Decode("pac.yaml", strings.NewReader("name: [unterminated"))
		require.ErrorIs(t, err, domain.ErrInvalidPackage)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := loader.Decode("pac.yaml", strings.NewReader("name: app\nversions: [1]\n"))
		require.ErrorIs(t, err, domain.ErrInvalidPackage)
	})

	t.Run("malformed hcl", func(t *testing.T) {
		_, err := loader.Decode("pac.hcl", strings.NewReader(`name = `))
		require.ErrorIs(t, err, domain.ErrInvalidPackage)
	})

	t.Run("unpinned dependency", func(t *testing.T) {
		_, err := loader.Decode("pac.yaml", strings.NewReader("name: app\ndeps:\n  - name: libx\n"))
		require.ErrorIs(t, err, domain.ErrUnpinnedDependency)
	})

	t.Run("duplicate dependency", func(t *testing.T) {
		src := "name: app\ndeps:\n  - {name: libx, tag: v1}\n  - {name: libx, tag: v2}\n"
		_, err := loader.Decode("pac.yaml", strings.NewReader(src))
		require.ErrorIs(t, err, domain.ErrDuplicateDependency)
	})

	t.Run("dependency outside the cache layout", func(t *testing.T) {
		src := "name: app\ntag: 1.0.0\ndeps:\n  - {name: ../../evil, tag: v1}\n"
		_, err := loader.Decode("pac.yaml", strings.NewReader(src))
		require.ErrorIs(t, err, domain.ErrInvalidPackage)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := loader.Decode("pac.yaml", strings.NewReader("name: app\n"))
		require.ErrorIs(t, err, domain.ErrInvalidPackage)
	})
}

func TestGlobalLoader_Load(t *testing.T) {
	t.Setenv("REPO_API_KEY", "secret-key")
	path := writeFile(t, t.TempDir(), "config.yaml", `
temp_dir: /tmp/pac-test
compiler: [make]
parallelism: 2
cache:
  - name: local_cache
    type: local
    url: file:///var/cache/pac
  - name: repo-1
    type: artifactory
    url: https://repo.example.com/artifactory/libs
    username: alice
    api_key: ${REPO_API_KEY}
    push: true
  - name: bucket
    type: object-store
    provider: b2
    bucket: artifacts
    access_key_id: id
    secret_access_key: secret
`)

	cfg, err := config.NewGlobalLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pac-test", cfg.TempDir)
	assert.Equal(t, []string{"make"}, cfg.Compiler)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, domain.DefaultRetries, cfg.Retries)
	assert.Equal(t, domain.DefaultRuntimeCommand, cfg.Runtime)

	local, ok := cfg.LocalCache()
	require.True(t, ok)
	assert.Equal(t, "local_cache", local.Name)

	remotes := cfg.RemoteCaches()
	require.Len(t, remotes, 2)
	assert.Equal(t, domain.BackendRemoteRepository, remotes[0].Kind)
	assert.Equal(t, domain.APIKey{Username: "alice", Key: "secret-key"}, remotes[0].Credentials)
	assert.True(t, remotes[0].Push)
	assert.Equal(t, domain.BackendObjectStore, remotes[1].Kind)
	assert.Equal(t, domain.AccessKeyPair{AccessKeyID: "id", SecretAccessKey: "secret"}, remotes[1].Credentials)
}

func TestGlobalLoader_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "remote without secret",
			content: `
cache:
  - {name: local, type: local, url: /tmp/cache}
  - {name: repo, type: remote-repository, url: https://repo, username: alice}
`,
		},
		{
			name: "unknown type",
			content: `
cache:
  - {name: local, type: ftp, url: /tmp/cache}
`,
		},
		{
			name:    "no local tier",
			content: "cache: []\n",
		},
		{
			name:    "malformed",
			content: "cache: {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.content)
			_, err := config.NewGlobalLoader().Load(path)
			require.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	_, err := config.NewGlobalLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGlobalLoader_PasswordOverAPIKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
cache:
  - {name: local, type: local, url: /tmp/cache}
  - {name: repo, type: remote-repository, url: https://repo, username: alice, password: p, api_key: k}
`)
	cfg, err := config.NewGlobalLoader().Load(path)
	require.NoError(t, err)

	remotes := cfg.RemoteCaches()
	require.Len(t, remotes, 1)
	assert.Equal(t, domain.BasicAuth{Username: "alice", Password: "p"}, remotes[0].Credentials)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "/etc/pac/config.yaml")
	assert.Equal(t, "/etc/pac/config.yaml", config.DefaultPath())
}
