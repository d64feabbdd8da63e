package driven

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// ResultStore persists query and check outputs.
// A failed save must not leave a partial or empty file at the target path.
type ResultStore interface {
	// SaveNovelty stores ranked results keyed by the query document's base
	// filename and returns the artifact path.
	SaveNovelty(ctx context.Context, documentPath string, results []domain.NoveltyResult) (string, error)

	// SavePlagiarism stores a report at path, creating parent directories.
	SavePlagiarism(ctx context.Context, path string, report *domain.PlagiarismReport) error
}
