package cli

import (
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
	"github.com/custodia-labs/novelcheck/internal/core/services"
	"github.com/custodia-labs/novelcheck/internal/detectors/lexical"
	"github.com/custodia-labs/novelcheck/internal/detectors/semantic"
	"github.com/custodia-labs/novelcheck/internal/extractors"
	"github.com/custodia-labs/novelcheck/internal/postprocessors/chunker"
)

// runtime holds the services for one command invocation.
type runtime struct {
	Settings   *domain.AppSettings
	Index      driving.IndexService
	Novelty    driving.NoveltyService
	Plagiarism driving.PlagiarismService

	embedder driven.EmbeddingService
}

// Close releases the embedding provider.
func (r *runtime) Close() error {
	if r.embedder == nil {
		return nil
	}
	return r.embedder.Close()
}

// buildRuntime wires services from settings. Tests replace it.
var buildRuntime = newRuntime

// newRuntime wires the production adapters. The embedding provider is only
// created when withEmbedder is set so index inspection works offline.
func newRuntime(settings *domain.AppSettings, withEmbedder bool) (*runtime, error) {
	var embedder driven.EmbeddingService
	if withEmbedder {
		var err error
		embedder, err = ai.CreateEmbeddingService(&settings.Embedding)
		if err != nil {
			return nil, err
		}
	}

	a := settings.Artifacts
	p := settings.Plagiarism
	store := sqlite.NewIndexStore(a.IndexPath, a.MappingPath)
	results := file.NewResultStore(a.ResultsDir)
	extractor := extractors.NewDefaultRegistry()

	return &runtime{
		Settings: settings,
		Index: services.NewIndexBuilderService(
			file.NewMetadataSource(a.MetadataPath, a.ParsedTextDir), embedder, store, flat.NewFactory(),
		),
		Novelty: services.NewNoveltyService(store, extractor, embedder, results, settings.Novelty),
		Plagiarism: services.NewPlagiarismService(
			extractor,
			chunker.New(chunker.WithChunkSize(p.ChunkSize)),
			lexical.New(p.ExactThreshold),
			semantic.New(embedder, p.ParaphraseThreshold),
			results,
			p.OnReferenceError,
		),
		embedder: embedder,
	}, nil
}

// openRuntime loads settings, applies per-run overrides and wires services
// from them. Settings are validated only when the provider is needed.
func openRuntime(withEmbedder bool, override func(*domain.AppSettings)) (*runtime, error) {
	svc, err := requireSettings()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(settings)
	}
	if withEmbedder {
		if err := svc.ValidateSettings(settings); err != nil {
			return nil, err
		}
	}
	return buildRuntime(settings, withEmbedder)
}
