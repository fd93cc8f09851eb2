package ports

import (
	"io"

	"go.trai.ch/pac/internal/core/domain"
)

// PackageLoader reads package descriptors.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type PackageLoader interface {
	// Load reads the descriptor found in dir.
	Load(dir string) (*domain.PackageConfig, error)

	// Decode parses a descriptor; filename selects the dialect.
	Decode(filename string, r io.Reader) (*domain.PackageConfig, error)
}

// GlobalConfigLoader reads the machine-wide configuration.
type GlobalConfigLoader interface {
	// Load reads, defaults and validates the configuration at path.
	Load(path string) (*domain.GlobalConfig, error)
}
