package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure NoveltyService implements the interface.
var _ driving.NoveltyService = (*NoveltyService)(nil)

// NoveltyService ranks corpus documents by similarity to a query document.
type NoveltyService struct {
	store     driven.IndexStore
	extractor driven.TextExtractor
	embedder  driven.EmbeddingService
	results   driven.ResultStore
	settings  domain.NoveltySettings
}

// NewNoveltyService creates a new novelty service.
func NewNoveltyService(
	store driven.IndexStore,
	extractor driven.TextExtractor,
	embedder driven.EmbeddingService,
	results driven.ResultStore,
	settings domain.NoveltySettings,
) *NoveltyService {
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	return &NoveltyService{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		results:   results,
		settings:  settings,
	}
}

// Query returns the topK nearest corpus documents to the document at
// documentPath, each with a verdict, and persists the ranked list.
func (s *NoveltyService) Query(ctx context.Context, documentPath string, topK int) (*domain.NoveltyReport, error) {
	logger.Section("Novelty Query")

	documentPath = strings.TrimSpace(documentPath)
	if documentPath == "" {
		return nil, fmt.Errorf("%w: document path is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}
	threshold := s.settings.SimilarityThreshold
	logger.Debug("Document: %s, top_k=%d, threshold=%.2f", documentPath, topK, threshold)

	// Artifacts come first so a missing index is reported before any
	// extraction or provider work.
	artifact, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrConfiguration)
	}
	if model := s.embedder.ModelName(); artifact.Model != "" && artifact.Model != model {
		return nil, fmt.Errorf("%w: index was built with model %q but %q is configured; rebuild the index or switch models",
			domain.ErrConfiguration, artifact.Model, model)
	}
	logger.Debug("Loaded index build %s: %d vectors, dimension %d",
		artifact.BuildID, artifact.Index.Size(), artifact.Index.Dimension())

	text, err := s.extractor.Extract(ctx, documentPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", documentPath, classify(domain.ErrExtraction, err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text extracted from %s", domain.ErrExtraction, documentPath)
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", classify(domain.ErrProviderUnavailable, err))
	}
	if dim := artifact.Index.Dimension(); dim > 0 && len(query) != dim {
		return nil, fmt.Errorf("%w: query embedding has dimension %d, index has %d",
			domain.ErrConfiguration, len(query), dim)
	}

	hits, err := artifact.Index.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.NoveltyResult, len(hits))
	for i, hit := range hits {
		similarity := domain.SimilarityFromDistance(hit.Distance)
		result := domain.NoveltyResult{
			Rank:       i + 1,
			Index:      hit.ID,
			Title:      domain.UnknownTitle,
			URL:        domain.UnknownURL,
			Similarity: similarity,
			Verdict:    domain.Classify(similarity, threshold),
		}
		if entry, ok := artifact.Mapping.Lookup(hit.ID); ok {
			result.Title = entry.Title
			result.URL = entry.URL
			result.PDFPath = entry.PDFPath
		} else {
			logger.Warn("index position %d has no mapping entry", hit.ID)
		}
		logger.Debug("#%d id=%d distance=%.4f similarity=%.4f %s",
			result.Rank, hit.ID, hit.Distance, similarity, result.Verdict)
		results[i] = result
	}

	resultPath, err := s.results.SaveNovelty(ctx, documentPath, results)
	if err != nil {
		return nil, fmt.Errorf("save results: %w", classify(domain.ErrIO, err))
	}

	return &domain.NoveltyReport{
		Document:   documentPath,
		Threshold:  threshold,
		Results:    results,
		ResultPath: resultPath,
	}, nil
}
