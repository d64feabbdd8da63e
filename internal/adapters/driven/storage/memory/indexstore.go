package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore for testing.
type IndexStore struct {
	mu       sync.RWMutex
	artifact *driven.IndexArtifact
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{}
}

// Publish replaces the stored pair.
func (s *IndexStore) Publish(_ context.Context, artifact *driven.IndexArtifact) error {
	if artifact == nil || artifact.Index == nil {
		return fmt.Errorf("%w: nothing to publish", domain.ErrInvalidInput)
	}
	if len(artifact.Mapping) != artifact.Index.Size() {
		return fmt.Errorf("%w: mapping has %d entries, index has %d vectors",
			domain.ErrInvalidInput, len(artifact.Mapping), artifact.Index.Size())
	}

	stored := *artifact
	stored.Mapping = make(domain.IDMapping, len(artifact.Mapping))
	for k, v := range artifact.Mapping {
		stored.Mapping[k] = v
	}
	if stored.BuiltAt.IsZero() {
		stored.BuiltAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = &stored
	return nil
}

// Load returns the stored pair.
func (s *IndexStore) Load(_ context.Context) (*driven.IndexArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.artifact == nil {
		return nil, fmt.Errorf("%w: no index has been published", domain.ErrMissingArtifact)
	}
	loaded := *s.artifact
	return &loaded, nil
}

// Info returns metadata for the stored pair.
func (s *IndexStore) Info(ctx context.Context) (*domain.IndexInfo, error) {
	artifact, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	indexPath, mappingPath := s.Paths()
	return &domain.IndexInfo{
		IndexPath:   indexPath,
		MappingPath: mappingPath,
		Size:        artifact.Index.Size(),
		Dimension:   artifact.Index.Dimension(),
		Model:       artifact.Model,
		BuildID:     artifact.BuildID,
		BuiltAt:     artifact.BuiltAt,
	}, nil
}

// Paths returns placeholder locations.
func (s *IndexStore) Paths() (indexPath, mappingPath string) {
	return ":memory:index", ":memory:mapping"
}
