package driven

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// OverlapDetector flags subject chunks whose best match among the pooled
// reference chunks meets the detector's threshold.
// Any term weights or embeddings are computed per call and never reused.
type OverlapDetector interface {
	// Type returns the tag attached to findings.
	Type() domain.OverlapType

	// Detect returns findings in subject order. Empty input on either side
	// yields no findings and no error.
	Detect(ctx context.Context, subject, reference []string) ([]domain.OverlapFinding, error)
}
