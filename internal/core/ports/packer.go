package ports

import (
	"context"

	"go.trai.ch/pac/internal/core/domain"
)

// Packer turns build output into an artifact file and reads artifacts back.
//
//go:generate go run go.uber.org/mock/mockgen -source=packer.go -destination=mocks/mock_packer.go -package=mocks
type Packer interface {
	// Pack archives the build output of pkg and sets pkg.Artifact.
	Pack(ctx context.Context, pkg *domain.Package) error

	// ReadDescriptor returns the package configuration stored inside an artifact.
	ReadDescriptor(artifactPath string) (*domain.PackageConfig, error)

	// Extract unpacks an artifact into dir.
	Extract(artifactPath, dir string) error
}
