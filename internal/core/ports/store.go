package ports

import "go.trai.ch/pac/internal/core/domain"

// ArtifactIndex records the artifacts held by the local tier.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ArtifactIndex interface {
	// Get returns the record stored for an artifact path.
	// Returns nil, nil if not found.
	Get(path string) (*domain.ArtifactRecord, error)

	// Put stores a record.
	Put(record domain.ArtifactRecord) error

	// List returns every record sorted by path.
	List() ([]domain.ArtifactRecord, error)
}
