package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pac/internal/adapters/archive"            //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/metrics"            //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/source"             //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/pac/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.GlobalLoaderNodeID,
			config.PackageLoaderNodeID,
			shell.NodeID,
			archive.NodeID,
			fs.HasherNodeID,
			source.NodeID,
			progrock.NodeID,
			logger.NodeID,
			metrics.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	globalLoader, err := graft.Dep[ports.GlobalConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	packageLoader, err := graft.Dep[ports.PackageLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[*shell.Executor](ctx)
	if err != nil {
		return nil, err
	}

	packer, err := graft.Dep[ports.Packer](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	fetcher, err := graft.Dep[ports.SourceFetcher](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := graft.Dep[*metrics.Recorder](ctx)
	if err != nil {
		return nil, err
	}

	return New(globalLoader, packageLoader, executor, packer, hasher, fetcher, telemetry, log, recorder), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:       app,
		Logger:    log,
		Telemetry: telemetry,
	}, nil
}
