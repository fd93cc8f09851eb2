package ports

import (
	"context"

	"go.trai.ch/pac/internal/core/domain"
)

// Compiler invokes the external build tool.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile runs the prebuild steps and the build command of pkg inside pkg.Path.
	// Linked dependencies are expected under pkg.Path/deps.
	Compile(ctx context.Context, pkg *domain.Package) error
}
