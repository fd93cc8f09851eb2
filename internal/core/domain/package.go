// Package domain contains the core domain models for packages, artifacts and cache tiers.
package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// ArtifactExt is the file extension of a packaged build artifact.
const ArtifactExt = "cp"

// DescriptorFiles are the package descriptor file names, in lookup order.
// The extension selects the dialect.
var DescriptorFiles = []string{"pac.yaml", "pac.yml", "pac.hcl"}

// Dependency is a reference to a package that has not been materialized yet.
type Dependency struct {
	// Name is unique within one dependency graph.
	Name string
	// Version is the pinned reference (git tag or revision).
	Version string
	// URL is the source location used when no cache tier holds the artifact.
	URL string
}

// Ref returns the "name@version" form used in logs and errors.
func (d Dependency) Ref() string {
	return d.Name + "@" + d.Version
}

// PrebuildStep is a command run in the package directory before compilation.
type PrebuildStep struct {
	Command []string
}

// PackageConfig is the parsed build configuration of a package.
type PackageConfig struct {
	Name       string
	Version    string
	AppVersion string
	URL        string
	Deps       []Dependency
	BuildVars  []string
	Prebuild   []PrebuildStep
}

// Validate checks that the configuration names and tags a package and pins every dependency exactly once.
// Names and tags become artifact key components, so each must be a single path segment.
func (c *PackageConfig) Validate() error {
	if c.Name == "" {
		return zerr.Wrap(ErrInvalidPackage, "package name is required")
	}
	if err := checkComponent(c.Name, "name"); err != nil {
		return zerr.With(err, "package", c.Name)
	}

	seen := make(map[string]bool, len(c.Deps))
	for _, dep := range c.Deps {
		if dep.Name == "" {
			return zerr.With(zerr.Wrap(ErrInvalidPackage, "dependency name is required"), "package", c.Name)
		}
		if seen[dep.Name] {
			err := zerr.With(zerr.Wrap(ErrDuplicateDependency, "dependency declared twice"), "package", c.Name)
			return zerr.With(err, "dependency", dep.Name)
		}
		if dep.Version == "" {
			err := zerr.With(zerr.Wrap(ErrUnpinnedDependency, "dependency has no tag"), "package", c.Name)
			return zerr.With(err, "dependency", dep.Name)
		}
		if err := checkComponent(dep.Name, "dependency name"); err != nil {
			return zerr.With(err, "package", c.Name)
		}
		if err := checkComponent(dep.Version, "dependency tag"); err != nil {
			return zerr.With(zerr.With(err, "package", c.Name), "dependency", dep.Name)
		}
		seen[dep.Name] = true
	}

	if c.Version == "" {
		return zerr.With(zerr.Wrap(ErrInvalidPackage, "package tag is required"), "package", c.Name)
	}
	if err := checkComponent(c.Version, "tag"); err != nil {
		return zerr.With(err, "package", c.Name)
	}
	return nil
}

// checkComponent rejects values that would not survive as one segment of an artifact key.
func checkComponent(value, field string) error {
	if value == "" || value == "." || value == ".." || strings.ContainsAny(value, "/\\") {
		return zerr.With(zerr.Wrap(ErrInvalidPackage, "invalid "+field), "value", value)
	}
	return nil
}

// Package is a buildable unit. It starts as a bare Dependency reference and is
// materialized once its configuration is known.
type Package struct {
	Dependency

	// Path is the source checkout or extracted artifact directory.
	Path string
	// Artifact is the path of the packaged artifact file, when one exists locally.
	Artifact string
	// Config is nil until the package has been fetched.
	Config *PackageConfig
}

// NewPackage creates an unmaterialized package for a dependency reference.
func NewPackage(dep Dependency) *Package {
	return &Package{Dependency: dep}
}

// NewPackageFromConfig creates a package from a configuration read at path.
func NewPackageFromConfig(cfg *PackageConfig, path string) *Package {
	return &Package{
		Dependency: Dependency{Name: cfg.Name, Version: cfg.Version, URL: cfg.URL},
		Path:       path,
		Config:     cfg,
	}
}

// Materialized reports whether the package configuration has been attached.
func (p *Package) Materialized() bool {
	return p.Config != nil
}

// Dependencies returns the declared dependencies in declaration order.
func (p *Package) Dependencies() []Dependency {
	if p.Config == nil {
		return nil
	}
	return p.Config.Deps
}

// UpdateFromPackage attaches a configuration and location read from a fetched source or artifact.
func (p *Package) UpdateFromPackage(cfg *PackageConfig, path string) error {
	if cfg.Name != p.Name {
		err := zerr.With(zerr.Wrap(ErrInvalidPackage, "fetched package has a different name"), "expected", p.Name)
		return zerr.With(err, "actual", cfg.Name)
	}
	p.Config = cfg
	p.Path = path
	if p.URL == "" {
		p.URL = cfg.URL
	}
	return nil
}

// ArtifactPath returns the artifact file of the package.
func (p *Package) ArtifactPath() string {
	if p.Artifact != "" {
		return p.Artifact
	}
	return filepath.Join(p.Path, p.Name+"."+ArtifactExt)
}

// BuildVars returns the configured build variables.
func (p *Package) BuildVars() []string {
	if p.Config == nil {
		return nil
	}
	return p.Config.BuildVars
}
