package driving

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// IndexService builds and inspects the corpus vector index.
type IndexService interface {
	// Build embeds every corpus document and publishes the index + mapping pair.
	// Nothing is published when the build fails.
	Build(ctx context.Context) (*domain.BuildResult, error)

	// Info describes the currently published index.
	Info(ctx context.Context) (*domain.IndexInfo, error)
}
