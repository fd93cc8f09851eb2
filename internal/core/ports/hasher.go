package ports

// Hasher computes content checksums.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the checksum of the file at path.
	ComputeFileHash(path string) (string, error)
}
