package app_test

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/adapters/archive"
	"go.trai.ch/pac/internal/adapters/config"
	"go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/adapters/logger"
	"go.trai.ch/pac/internal/adapters/metrics"
	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/adapters/source"
	"go.trai.ch/pac/internal/adapters/telemetry"
	"go.trai.ch/pac/internal/adapters/telemetry/progrock"
	"go.trai.ch/pac/internal/app"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
)

type fixture struct {
	app     *app.App
	opts    app.Options
	project string
	cache   string
}

func newFixture(t *testing.T, compiler string) *fixture {
	t.Helper()
	return newFixtureWith(t, compiler, telemetry.NewNoOp())
}

func newFixtureWith(t *testing.T, compiler string, tel ports.Telemetry) *fixture {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	cfgPath := filepath.Join(root, "config.yaml")
	cfg := strings.Join([]string{
		"temp_dir: " + filepath.Join(root, "tmp"),
		`runtime: [echo, "26"]`,
		"compiler: [sh, -c, " + `"` + compiler + `"]`,
		"parallelism: 2",
		"cache:",
		"  - name: local",
		"    type: local",
		"    url: file://" + cacheDir,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(project, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(project, "pac.yaml"), []byte("name: app\ntag: 1.0.0\n"), 0o600))

	log := logger.New()
	if l, ok := log.(*logger.Logger); ok {
		l.SetOutput(io.Discard)
	}
	executor := shell.NewExecutor(log)
	loader := config.NewPackageLoader()

	a := app.New(
		config.NewGlobalLoader(),
		loader,
		executor,
		archive.NewPacker(fs.NewWalker(), loader),
		fs.NewHasher(),
		source.NewGit(executor),
		tel,
		log,
		metrics.New(),
	)
	return &fixture{
		app:     a,
		opts:    app.Options{ConfigPath: cfgPath},
		project: project,
		cache:   cacheDir,
	}
}

func TestApp_BuildPublishesToLocalCache(t *testing.T) {
	f := newFixture(t, "echo built > out.txt")
	ctx := context.Background()

	require.NoError(t, f.app.Build(ctx, f.project, f.opts))

	records, err := f.app.ListCache(ctx, f.opts)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "pac/app/1.0.0/26/app.cp", records[0].Path)
	assert.FileExists(t, filepath.Join(f.cache, "pac", "app", "1.0.0", "26", "app.cp"))

	ok, err := f.app.Exists(ctx, domain.Dependency{Name: "app", Version: "1.0.0"}, "", f.opts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.app.Exists(ctx, domain.Dependency{Name: "app", Version: "2.0.0"}, "local", f.opts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApp_BuildFailure(t *testing.T) {
	f := newFixture(t, "exit 3")

	err := f.app.Build(context.Background(), f.project, f.opts)
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrBuildFailed)

	records, err := f.app.ListCache(context.Background(), f.opts)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestApp_Fetch(t *testing.T) {
	f := newFixture(t, "exit 3")

	pkgs, err := f.app.Fetch(context.Background(), f.project, f.opts)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "app", pkgs[0].Name)
}

func TestApp_PublishCachedProject(t *testing.T) {
	f := newFixture(t, "echo built > out.txt")
	ctx := context.Background()

	require.NoError(t, f.app.Build(ctx, f.project, f.opts))
	require.NoError(t, os.Remove(filepath.Join(f.project, "app.cp")))

	err := f.app.Publish(ctx, f.project, app.PublishOptions{Options: f.opts, Rewrite: true})
	require.NoError(t, err)

	records, err := f.app.ListCache(ctx, f.opts)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestApp_PublishUnknownTarget(t *testing.T) {
	f := newFixture(t, "echo built > out.txt")

	err := f.app.Publish(context.Background(), f.project, app.PublishOptions{Options: f.opts, Target: "nowhere"})
	require.ErrorIs(t, err, domain.ErrUnknownCache)
}

func TestApp_ExistsUnknownTier(t *testing.T) {
	f := newFixture(t, "true")

	_, err := f.app.Exists(context.Background(), domain.Dependency{Name: "app", Version: "1.0.0"}, "nowhere", f.opts)
	require.ErrorIs(t, err, domain.ErrUnknownCache)
}

func TestApp_MissingConfig(t *testing.T) {
	f := newFixture(t, "true")
	opts := app.Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}

	err := f.app.Build(context.Background(), f.project, opts)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestApp_WritesMetricsFile(t *testing.T) {
	f := newFixture(t, "echo built > out.txt")
	f.opts.MetricsFile = filepath.Join(t.TempDir(), "pac.prom")

	require.NoError(t, f.app.Build(context.Background(), f.project, f.opts))

	data, err := os.ReadFile(f.opts.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pac_builds_total")
}

func TestApp_BuildWithProgress(t *testing.T) {
	f := newFixtureWith(t, "echo built > out.txt", progrock.New())
	f.app.WithTeaOptions(tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer())
	f.opts.Progress = true

	require.NoError(t, f.app.Build(context.Background(), f.project, f.opts))

	records, err := f.app.ListCache(context.Background(), f.opts)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
