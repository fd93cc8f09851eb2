package ports

import (
	"context"

	"go.trai.ch/pac/internal/core/domain"
)

// SourceFetcher checks out package sources when no cache tier holds an artifact.
//
//go:generate go run go.uber.org/mock/mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceFetcher interface {
	// Checkout places the sources of dep at its pinned version into dir.
	Checkout(ctx context.Context, dep domain.Dependency, dir string) error
}

// RuntimeDetector discovers the runtime tag artifacts are built against.
type RuntimeDetector interface {
	// DetectRuntimeTag returns the tag and whether it could be determined.
	DetectRuntimeTag(ctx context.Context) (domain.RuntimeTag, bool)
}
