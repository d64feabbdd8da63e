package driving

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// PlagiarismService compares a document chunk by chunk against references.
type PlagiarismService interface {
	// Check runs both overlap detectors and writes the merged report.
	Check(ctx context.Context, req domain.PlagiarismRequest) (*domain.PlagiarismReport, error)
}
