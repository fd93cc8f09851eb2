package builder

import (
	"context"
	"errors"

	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// future is the shared result of the one build of an artifact key.
type future struct {
	done chan struct{}
	err  error
}

// BuildTree makes sure pkg is represented by a cached artifact. Missing dependencies
// are built first, siblings concurrently; each is linked into the package directory
// before the compiler runs. A nil error means pkg is in the local tier.
//
// Each artifact key is built at most once per Builder; concurrent callers wait for
// the build in flight.
func (b *Builder) BuildTree(ctx context.Context, pkg *domain.Package) error {
	key := b.Chain.Key(pkg).Path()

	b.mu.Lock()
	f, running := b.futures[key]
	if !running {
		f = &future{done: make(chan struct{})}
		b.futures[key] = f
	}
	b.mu.Unlock()

	if !running {
		f.err = b.build(ctx, pkg)
		close(f.done)
		return f.err
	}

	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Builder) build(ctx context.Context, pkg *domain.Package) (err error) {
	ctx, vertex := b.Telemetry.Record(ctx, pkg.Ref())
	defer func() { vertex.Complete(err) }()

	cached, err := b.Chain.Exists(ctx, pkg)
	if err != nil {
		return err
	}
	if cached {
		vertex.Cached()
		return nil
	}

	deps, err := b.dependencies(pkg)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range deps {
		g.Go(func() error {
			if err := b.BuildTree(gctx, dep); err != nil {
				return unresolved(pkg, dep, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, dep := range deps {
		if err := b.Chain.LinkPackage(ctx, dep, pkg.Path); err != nil {
			return unresolved(pkg, dep, err)
		}
	}

	if err := b.compile(ctx, pkg); err != nil {
		return err
	}

	vertex.Log("packing " + pkg.Ref())
	if err := b.Packer.Pack(ctx, pkg); err != nil {
		return err
	}
	return b.Chain.PublishBuilt(ctx, pkg)
}

// dependencies returns the graph packages for the declared dependencies of pkg, in declaration order.
func (b *Builder) dependencies(pkg *domain.Package) ([]*domain.Package, error) {
	graph := b.Graph()
	declared := pkg.Dependencies()
	deps := make([]*domain.Package, 0, len(declared))
	for _, dep := range declared {
		var resolved *domain.Package
		if graph != nil {
			resolved, _ = graph.Get(dep.Name)
		}
		if resolved == nil || !resolved.Materialized() {
			err := zerr.With(zerr.Wrap(domain.ErrUnresolvedDependency, "dependency was not populated"), "package", pkg.Ref())
			return nil, zerr.With(err, "dependency", dep.Ref())
		}
		deps = append(deps, resolved)
	}
	return deps, nil
}

// compile runs the compiler while holding a worker slot.
func (b *Builder) compile(ctx context.Context, pkg *domain.Package) error {
	if err := b.compileSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.compileSem.Release(1)

	b.Logger.Info("building " + pkg.Ref())
	err := b.Compiler.Compile(ctx, pkg)
	b.Metrics.Build(pkg.Name, err == nil)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrBuildFailed, err), "compiler failed"), "package", pkg.Ref())
	}
	return nil
}

func unresolved(pkg, dep *domain.Package, err error) error {
	err = zerr.Wrap(errors.Join(domain.ErrUnresolvedDependency, err), "dependency could not be resolved")
	err = zerr.With(err, "package", pkg.Ref())
	return zerr.With(err, "dependency", dep.Ref())
}
