// Package semantic implements the paraphrase-overlap detector: cosine
// similarity between chunk embeddings, which survives rewording.
package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/detectors"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure Detector implements the interface.
var _ driven.OverlapDetector = (*Detector)(nil)

// DefaultThreshold is the minimum cosine similarity for a paraphrase overlap.
const DefaultThreshold = 0.75

// Detector flags reworded chunks with preserved meaning.
type Detector struct {
	embedder  driven.EmbeddingService
	threshold float64
}

// New creates a semantic detector. A negative threshold uses DefaultThreshold.
func New(embedder driven.EmbeddingService, threshold float64) *Detector {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		embedder:  embedder,
		threshold: threshold,
	}
}

// Type returns domain.OverlapParaphrase.
func (d *Detector) Type() domain.OverlapType {
	return domain.OverlapParaphrase
}

// Threshold returns the configured threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect embeds the pooled chunks in one batch and flags subject chunks whose
// best cosine similarity against any reference chunk meets the threshold.
func (d *Detector) Detect(ctx context.Context, subject, reference []string) ([]domain.OverlapFinding, error) {
	if len(subject) == 0 || len(reference) == 0 {
		logger.Debug("semantic: no comparable content (subject=%d, reference=%d)", len(subject), len(reference))
		return []domain.OverlapFinding{}, nil
	}
	if d.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrConfiguration)
	}

	pooled := make([]string, 0, len(subject)+len(reference))
	pooled = append(pooled, subject...)
	pooled = append(pooled, reference...)

	vectors, err := d.embedder.EmbedBatch(ctx, pooled)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", asProviderError(err))
	}
	if len(vectors) != len(pooled) {
		return nil, fmt.Errorf("%w: provider returned %d embeddings for %d chunks",
			domain.ErrProviderUnavailable, len(vectors), len(pooled))
	}

	subjectVecs := vectors[:len(subject)]
	referenceVecs := vectors[len(subject):]

	best := detectors.BestMatches(len(subjectVecs), len(referenceVecs), func(i, j int) float64 {
		return Cosine(subjectVecs[i], referenceVecs[j])
	})

	findings := detectors.Flag(subject, best, d.threshold, domain.OverlapParaphrase)
	logger.Debug("semantic: %d of %d chunks at or above %.2f", len(findings), len(subject), d.threshold)
	return findings, nil
}

// Cosine returns the cosine similarity of a and b. A zero vector or a length
// mismatch scores 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// asProviderError keeps already classified errors and marks the rest as
// provider failures.
func asProviderError(err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}
