// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pac/internal/adapters/archive"
	_ "go.trai.ch/pac/internal/adapters/config"
	_ "go.trai.ch/pac/internal/adapters/fs"
	_ "go.trai.ch/pac/internal/adapters/logger"
	_ "go.trai.ch/pac/internal/adapters/metrics"
	_ "go.trai.ch/pac/internal/adapters/shell"
	_ "go.trai.ch/pac/internal/adapters/source"
	_ "go.trai.ch/pac/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/pac/internal/app"
)
