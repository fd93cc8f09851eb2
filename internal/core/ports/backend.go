// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/pac/internal/core/domain"
)

// Backend is a single cache tier.
//
//go:generate go run go.uber.org/mock/mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks
type Backend interface {
	// Name returns the configured name of the tier, unique within a chain.
	Name() string

	// Kind returns the variant of the tier.
	Kind() domain.BackendKind

	// Key returns the artifact key of pkg in this tier.
	Key(pkg *domain.Package) domain.ArtifactKey

	// Exists reports whether the tier holds the artifact of pkg. It never mutates the tier.
	// I/O failures are reported as domain.ErrCacheUnavailable.
	Exists(ctx context.Context, pkg *domain.Package) (bool, error)

	// Fetch copies the artifact into a local location and attaches the descriptor read
	// from it to pkg. It fails with domain.ErrArtifactNotFound when the artifact is absent
	// and with domain.ErrTransferFailed when the transfer breaks off.
	Fetch(ctx context.Context, pkg *domain.Package) error

	// Publish stores the artifact of pkg. With overwrite unset an existing artifact
	// short-circuits the call. It returns true once the artifact is visible in the tier.
	Publish(ctx context.Context, pkg *domain.Package, overwrite bool) (bool, error)

	// MaterializeInto makes pkg resolvable for a compiler running in targetDir.
	// Tiers that cannot serve as link sources return domain.ErrNotLinkable.
	MaterializeInto(ctx context.Context, pkg *domain.Package, targetDir string) error
}

// BackendFactory creates backends from configured cache entries.
type BackendFactory interface {
	New(entry domain.CacheEntry, runtime domain.RuntimeTag) (Backend, error)
}
