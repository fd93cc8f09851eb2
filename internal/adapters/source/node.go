package source

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pac/internal/adapters/shell"
	"go.trai.ch/pac/internal/core/ports"
)

// NodeID is the unique identifier for the source fetcher Graft node.
const NodeID graft.ID = "adapter.source_fetcher"

func init() {
	graft.Register(graft.Node[ports.SourceFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.SourceFetcher, error) {
			executor, err := graft.Dep[*shell.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewGit(executor), nil
		},
	})
}
