package driving

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// NoveltyService checks a document against the corpus index.
type NoveltyService interface {
	// Query returns the topK nearest corpus documents with a verdict each.
	// A non-positive topK uses the configured default.
	Query(ctx context.Context, documentPath string, topK int) (*domain.NoveltyReport, error)
}
