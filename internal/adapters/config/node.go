package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pac/internal/core/ports"
)

const (
	// PackageLoaderNodeID is the unique identifier for the package descriptor loader Graft node.
	PackageLoaderNodeID graft.ID = "adapter.package_loader"
	// GlobalLoaderNodeID is the unique identifier for the global config loader Graft node.
	GlobalLoaderNodeID graft.ID = "adapter.global_config_loader"
)

func init() {
	graft.Register(graft.Node[ports.PackageLoader]{
		ID:        PackageLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PackageLoader, error) {
			return NewPackageLoader(), nil
		},
	})

	graft.Register(graft.Node[ports.GlobalConfigLoader]{
		ID:        GlobalLoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GlobalConfigLoader, error) {
			return NewGlobalLoader(), nil
		},
	})
}
