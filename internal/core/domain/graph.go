package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// CyclePathSeparator joins package names in the path reported by ErrCyclicDependency.
const CyclePathSeparator = " → "

// PackageGraph is the populated dependency graph of one build session.
type PackageGraph struct {
	packages map[string]*Package
	order    []string
	buildSeq []string
}

// NewPackageGraph creates an empty graph.
func NewPackageGraph() *PackageGraph {
	return &PackageGraph{
		packages: make(map[string]*Package),
	}
}

// Add registers a materialized package. Adding a name twice with another version is a conflict.
func (g *PackageGraph) Add(pkg *Package) error {
	if existing, ok := g.packages[pkg.Name]; ok {
		if existing.Version != pkg.Version {
			return VersionConflict(pkg.Name, existing.Version, pkg.Version)
		}
		return nil
	}
	g.packages[pkg.Name] = pkg
	g.order = append(g.order, pkg.Name)
	return nil
}

// Get returns the package registered under name.
func (g *PackageGraph) Get(name string) (*Package, bool) {
	pkg, ok := g.packages[name]
	return pkg, ok
}

// Len returns the number of packages in the graph.
func (g *PackageGraph) Len() int {
	return len(g.packages)
}

// Validate checks for cycles and missing packages using a depth-first colouring.
// It populates the post-order used by Walk.
func (g *PackageGraph) Validate() error {
	g.buildSeq = make([]string, 0, len(g.packages))
	state := make(map[string]int, len(g.packages)) // 0: unvisited, 1: on path, 2: done
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = 1
		path = append(path, name)

		pkg, ok := g.packages[name]
		if !ok {
			return zerr.With(zerr.Wrap(ErrPackageNotFound, "dependency was not populated"), "package", name)
		}

		for _, dep := range pkg.Dependencies() {
			switch state[dep.Name] {
			case 1:
				return CyclicDependency(append(path, dep.Name))
			case 0:
				if err := visit(dep.Name); err != nil {
					return err
				}
			}
		}

		state[name] = 2
		path = path[:len(path)-1]
		g.buildSeq = append(g.buildSeq, name)
		return nil
	}

	// Insertion order keeps the build sequence deterministic.
	for _, name := range g.order {
		if state[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Walk yields packages in post-order: every dependency before its dependents.
// It assumes Validate() has been called and returned nil.
func (g *PackageGraph) Walk() iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		for _, name := range g.buildSeq {
			if !yield(g.packages[name]) {
				return
			}
		}
	}
}

// CyclicDependency builds the error for a cycle. path ends with the repeated name;
// only the looping suffix is reported, e.g. "A → B → A".
func CyclicDependency(path []string) error {
	last := path[len(path)-1]
	start := 0
	for i, name := range path[:len(path)-1] {
		if name == last {
			start = i
			break
		}
	}
	cycle := strings.Join(path[start:], CyclePathSeparator)
	return zerr.With(zerr.Wrap(ErrCyclicDependency, "dependency cycle detected: "+cycle), "cycle", cycle)
}

// VersionConflict builds the error for a name pinned to two different versions.
func VersionConflict(name, have, want string) error {
	err := zerr.With(zerr.Wrap(ErrVersionConflict, "package pinned to different versions"), "package", name)
	err = zerr.With(err, "have", have)
	return zerr.With(err, "want", want)
}
