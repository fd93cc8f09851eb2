// Package builder resolves a project's dependency tree and builds every package
// that no cache tier can provide, dependencies first.
package builder

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/pac/internal/engine/chain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Deps are the collaborators of a Builder.
type Deps struct {
	Chain     *chain.Chain
	Loader    ports.PackageLoader
	Fetcher   ports.SourceFetcher
	Compiler  ports.Compiler
	Packer    ports.Packer
	Telemetry ports.Telemetry
	Logger    ports.Logger
	Metrics   ports.Metrics
}

// Builder runs one build session.
type Builder struct {
	Deps

	workDir     string
	parallelism int
	compileSem  *semaphore.Weighted

	mu      sync.Mutex
	graph   *domain.PackageGraph
	futures map[string]*future
}

// New creates a Builder. Sources checked out during the session go below workDir.
// At most parallelism fetches and compiler runs happen at once.
func New(deps Deps, workDir string, parallelism int) *Builder {
	parallelism = max(parallelism, 1)
	return &Builder{
		Deps:        deps,
		workDir:     workDir,
		parallelism: parallelism,
		compileSem:  semaphore.NewWeighted(int64(parallelism)),
		futures:     make(map[string]*future),
	}
}

// Graph returns the graph filled by the last Populate.
func (b *Builder) Graph() *domain.PackageGraph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph
}

// Build populates the dependency graph of the project in root and builds it.
func (b *Builder) Build(ctx context.Context, root string) (*domain.Package, error) {
	top, err := b.Populate(ctx, root)
	if err != nil {
		return nil, err
	}
	return top, b.BuildTree(ctx, top)
}

// frame is one entry of the populate stack: a materialized package and the
// chain of names leading to it.
type frame struct {
	pkg  *domain.Package
	path []string
}

// Populate loads the project in root and materializes its whole dependency tree,
// from the cache chain or, on a miss, from source. The tree is walked with an
// explicit stack; the direct dependencies of one package are fetched concurrently.
func (b *Builder) Populate(ctx context.Context, root string) (*domain.Package, error) {
	cfg, err := b.Loader.Load(root)
	if err != nil {
		return nil, err
	}
	top := domain.NewPackageFromConfig(cfg, root)

	graph := domain.NewPackageGraph()
	if err := graph.Add(top); err != nil {
		return nil, err
	}

	stack := []frame{{pkg: top, path: []string{top.Name}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fresh, err := b.unseen(graph, f)
		if err != nil {
			return nil, err
		}
		if err := b.materializeAll(ctx, fresh); err != nil {
			return nil, zerr.With(err, "package", f.pkg.Ref())
		}

		// Reverse push keeps declaration order when popping.
		for i := len(fresh) - 1; i >= 0; i-- {
			if err := graph.Add(fresh[i]); err != nil {
				return nil, err
			}
			path := append(slices.Clone(f.path), fresh[i].Name)
			stack = append(stack, frame{pkg: fresh[i], path: path})
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.graph = graph
	b.mu.Unlock()
	return top, nil
}

// unseen returns packages for the dependencies of f that are not in the graph yet.
func (b *Builder) unseen(graph *domain.PackageGraph, f frame) ([]*domain.Package, error) {
	var fresh []*domain.Package
	for _, dep := range f.pkg.Dependencies() {
		if slices.Contains(f.path, dep.Name) {
			return nil, domain.CyclicDependency(append(slices.Clone(f.path), dep.Name))
		}
		if existing, ok := graph.Get(dep.Name); ok {
			if existing.Version != dep.Version {
				return nil, domain.VersionConflict(dep.Name, existing.Version, dep.Version)
			}
			continue
		}
		fresh = append(fresh, domain.NewPackage(dep))
	}
	return fresh, nil
}

func (b *Builder) materializeAll(ctx context.Context, pkgs []*domain.Package) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for _, pkg := range pkgs {
		g.Go(func() error {
			return b.materialize(ctx, pkg)
		})
	}
	return g.Wait()
}

// materialize resolves pkg from the cache chain, falling back to a source checkout.
func (b *Builder) materialize(ctx context.Context, pkg *domain.Package) error {
	err := b.Chain.Resolve(ctx, pkg)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		return err
	}

	dir := filepath.Join(b.workDir, uuid.NewString(), pkg.Name)
	b.Logger.Info("fetching " + pkg.Ref() + " from source")
	if err := b.Fetcher.Checkout(ctx, pkg.Dependency, dir); err != nil {
		return err
	}
	cfg, err := b.Loader.Load(dir)
	if err != nil {
		return err
	}
	return pkg.UpdateFromPackage(cfg, dir)
}
