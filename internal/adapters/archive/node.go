package archive

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pac/internal/adapters/config"
	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/ports"
)

// NodeID is the unique identifier for the packer Graft node.
const NodeID graft.ID = "adapter.packer"

func init() {
	graft.Register(graft.Node[ports.Packer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{pacfs.WalkerNodeID, config.PackageLoaderNodeID},
		Run: func(ctx context.Context) (ports.Packer, error) {
			walker, err := graft.Dep[*pacfs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.PackageLoader](ctx)
			if err != nil {
				return nil, err
			}
			return NewPacker(walker, loader), nil
		},
	})
}
