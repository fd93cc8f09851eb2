package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/zerr"
)

func newPkg(name, version string, deps ...string) *domain.Package {
	cfg := &domain.PackageConfig{Name: name, Version: version}
	for _, d := range deps {
		cfg.Deps = append(cfg.Deps, domain.Dependency{Name: d, Version: "v1"})
	}
	return domain.NewPackageFromConfig(cfg, "/src/"+name)
}

func TestPackageGraph_Add_VersionConflict(t *testing.T) {
	g := domain.NewPackageGraph()
	require.NoError(t, g.Add(newPkg("libx", "v1")))
	require.NoError(t, g.Add(newPkg("libx", "v1")))

	err := g.Add(newPkg("libx", "v2"))
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, 1, g.Len())
}

func TestPackageGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewPackageGraph()
	require.NoError(t, g.Add(newPkg("A", "v1", "B")))
	require.NoError(t, g.Add(newPkg("B", "v1", "A")))

	err := g.Validate()
	require.ErrorIs(t, err, domain.ErrCyclicDependency)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "A → B → A", zErr.Metadata()["cycle"])
}

func TestPackageGraph_Validate_MissingPackage(t *testing.T) {
	g := domain.NewPackageGraph()
	require.NoError(t, g.Add(newPkg("A", "v1", "B")))

	err := g.Validate()
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestPackageGraph_Walk_PostOrder(t *testing.T) {
	// app -> (web, db), web -> db
	g := domain.NewPackageGraph()
	require.NoError(t, g.Add(newPkg("app", "v1", "web", "db")))
	require.NoError(t, g.Add(newPkg("web", "v1", "db")))
	require.NoError(t, g.Add(newPkg("db", "v1")))
	require.NoError(t, g.Validate())

	var order []string
	for pkg := range g.Walk() {
		order = append(order, pkg.Name)
	}
	assert.Equal(t, []string{"db", "web", "app"}, order)
}

func TestCyclicDependency_ReportsLoopOnly(t *testing.T) {
	err := domain.CyclicDependency([]string{"root", "A", "B", "C", "A"})

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, "A → B → C → A", zErr.Metadata()["cycle"])
}
