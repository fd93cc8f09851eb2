// Package cas implements the index of artifacts held by the local cache tier.
package cas

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	pacfs "go.trai.ch/pac/internal/adapters/fs"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/pac/internal/core/ports"
	"go.trai.ch/zerr"
)

// IndexFile is the file name of the index inside the local cache root.
const IndexFile = "index.json"

var _ ports.ArtifactIndex = (*Store)(nil)

// Store implements ports.ArtifactIndex using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.ArtifactRecord
}

// NewStore creates a new ArtifactIndex backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.ArtifactRecord),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read artifact index"), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal artifact index"), "path", s.path)
	}
	return nil
}

// save must be called with the write lock held.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal artifact index")
	}
	if _, err := pacfs.WriteAtomic(s.path, bytes.NewReader(data)); err != nil {
		return zerr.Wrap(err, "failed to write artifact index")
	}
	return nil
}

// Get retrieves the record for an artifact path.
func (s *Store) Get(path string) (*domain.ArtifactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.cache[path]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Put stores the record and persists the index.
func (s *Store) Put(record domain.ArtifactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[record.Path] = record
	return s.save()
}

// List returns every record sorted by path.
func (s *Store) List() ([]domain.ArtifactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ArtifactRecord, 0, len(s.cache))
	for _, record := range s.cache {
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b domain.ArtifactRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	return records, nil
}
