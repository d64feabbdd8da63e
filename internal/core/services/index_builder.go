package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure IndexBuilderService implements the interface.
var _ driving.IndexService = (*IndexBuilderService)(nil)

// IndexBuilderService embeds the corpus and publishes the index + mapping pair.
type IndexBuilderService struct {
	metadata driven.MetadataSource
	embedder driven.EmbeddingService
	store    driven.IndexStore
	newIndex driven.VectorIndexFactory
	newID    func() string
}

// NewIndexBuilderService creates a new index builder.
// The embedder may be nil when only Info is needed.
func NewIndexBuilderService(
	metadata driven.MetadataSource,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	newIndex driven.VectorIndexFactory,
) *IndexBuilderService {
	return &IndexBuilderService{
		metadata: metadata,
		embedder: embedder,
		store:    store,
		newIndex: newIndex,
		newID:    uuid.NewString,
	}
}

// Build embeds every corpus document and publishes the pair.
// Document i always lands at index position i, including documents whose
// text is empty. Nothing is published when any step fails.
func (s *IndexBuilderService) Build(ctx context.Context) (*domain.BuildResult, error) {
	logger.Section("Index Build")
	defer logger.Timed("index build")()

	if s.metadata == nil || s.store == nil || s.newIndex == nil {
		return nil, fmt.Errorf("%w: index builder is not fully configured", domain.ErrConfiguration)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrConfiguration)
	}

	logger.Debug("Loading corpus metadata from %s", s.metadata.Path())
	docs, err := s.metadata.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus metadata: %w", classify(domain.ErrIO, err))
	}

	texts := make([]string, len(docs))
	empty := 0
	for i, doc := range docs {
		if doc.ID != i {
			return nil, fmt.Errorf("%w: document %q has id %d at position %d",
				domain.ErrInvalidInput, doc.Title, doc.ID, i)
		}
		texts[i] = doc.Text
		if doc.Text == "" {
			empty++
		}
	}
	logger.Debug("Corpus: %d documents, %d without text", len(docs), empty)
	if len(docs) == 0 {
		logger.Warn("corpus metadata %s lists no documents; publishing an empty index", s.metadata.Path())
	}

	index := s.newIndex()
	if len(texts) > 0 {
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed corpus: %w", classify(domain.ErrProviderUnavailable, err))
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: provider returned %d embeddings for %d documents",
				domain.ErrConfiguration, len(vectors), len(texts))
		}
		for i, vec := range vectors {
			id, err := index.Add(ctx, vec)
			if err != nil {
				return nil, fmt.Errorf("add document %d: %w", i, err)
			}
			if id != i {
				return nil, fmt.Errorf("%w: document %d was stored at position %d", domain.ErrConfiguration, i, id)
			}
		}
	}

	artifact := &driven.IndexArtifact{
		Index:   index,
		Mapping: domain.NewIDMapping(docs),
		Model:   s.embedder.ModelName(),
		BuildID: s.newID(),
	}
	logger.Debug("Publishing build %s (model=%s, dimension=%d)", artifact.BuildID, artifact.Model, index.Dimension())
	if err := s.store.Publish(ctx, artifact); err != nil {
		return nil, fmt.Errorf("publish index: %w", err)
	}

	indexPath, mappingPath := s.store.Paths()
	return &domain.BuildResult{
		IndexPath:   indexPath,
		MappingPath: mappingPath,
		Documents:   index.Size(),
		EmptyTexts:  empty,
		Dimension:   index.Dimension(),
		Model:       artifact.Model,
		BuildID:     artifact.BuildID,
	}, nil
}

// Info describes the currently published index.
func (s *IndexBuilderService) Info(ctx context.Context) (*domain.IndexInfo, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: no index store configured", domain.ErrConfiguration)
	}
	return s.store.Info(ctx)
}
