package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when the global configuration or a cache entry is invalid.
	ErrConfiguration = zerr.New("invalid configuration")

	// ErrCacheUnavailable is returned when a cache tier cannot be reached during a check or transfer.
	ErrCacheUnavailable = zerr.New("cache unavailable")

	// ErrArtifactNotFound is returned when a tier definitively does not hold the requested artifact.
	ErrArtifactNotFound = zerr.New("artifact not found")

	// ErrTransferFailed is returned when an upload or download stops mid-stream.
	ErrTransferFailed = zerr.New("artifact transfer failed")

	// ErrCacheMiss is returned by the cache chain when no tier holds the requested artifact.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrCyclicDependency is returned when the dependency tree contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrUnresolvedDependency is returned when a dependency could not be built or fetched.
	ErrUnresolvedDependency = zerr.New("unresolved dependency")

	// ErrBuildFailed is returned when the external compiler fails for a package.
	ErrBuildFailed = zerr.New("build failed")

	// ErrUnknownRuntime is returned when an artifact would be published without a known runtime tag.
	ErrUnknownRuntime = zerr.New("runtime tag unknown")

	// ErrNotLinkable is returned when a tier cannot serve as a build-time link source.
	ErrNotLinkable = zerr.New("cache tier cannot link packages")

	// ErrUnknownCache is returned when a cache tier is referenced by a name that is not configured.
	ErrUnknownCache = zerr.New("unknown cache")

	// ErrDuplicateDependency is returned when a package declares the same dependency twice.
	ErrDuplicateDependency = zerr.New("duplicate dependency")

	// ErrUnpinnedDependency is returned when a dependency does not carry an exact version reference.
	ErrUnpinnedDependency = zerr.New("dependency is not pinned")

	// ErrVersionConflict is returned when one package name is pinned to different versions in one graph.
	ErrVersionConflict = zerr.New("conflicting dependency versions")

	// ErrPackageConfigNotFound is returned when no package descriptor exists in a checkout or artifact.
	ErrPackageConfigNotFound = zerr.New("package descriptor not found")

	// ErrInvalidPackage is returned when a package descriptor is malformed.
	ErrInvalidPackage = zerr.New("invalid package")

	// ErrPackageNotFound is returned when a package is not part of the populated graph.
	ErrPackageNotFound = zerr.New("package not found")
)
