// Package lexical implements the exact-overlap detector: TF-IDF cosine
// similarity between chunks, sensitive to shared surface tokens only.
package lexical

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/detectors"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure Detector implements the interface.
var _ driven.OverlapDetector = (*Detector)(nil)

// DefaultThreshold is the minimum cosine similarity for an exact overlap.
const DefaultThreshold = 0.80

// Detector flags verbatim or near-verbatim copied chunks.
type Detector struct {
	threshold float64
}

// New creates a lexical detector. A negative threshold uses DefaultThreshold.
func New(threshold float64) *Detector {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Type returns domain.OverlapExact.
func (d *Detector) Type() domain.OverlapType {
	return domain.OverlapExact
}

// Threshold returns the configured threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect fits a fresh vocabulary on the pooled subject and reference chunks,
// then flags subject chunks whose best cosine similarity meets the threshold.
func (d *Detector) Detect(_ context.Context, subject, reference []string) ([]domain.OverlapFinding, error) {
	if len(subject) == 0 || len(reference) == 0 {
		logger.Debug("lexical: no comparable content (subject=%d, reference=%d)", len(subject), len(reference))
		return []domain.OverlapFinding{}, nil
	}

	pooled := make([]string, 0, len(subject)+len(reference))
	pooled = append(pooled, subject...)
	pooled = append(pooled, reference...)

	vectorizer := Fit(pooled)
	logger.Debug("lexical: vocabulary of %d terms over %d chunks", vectorizer.VocabularySize(), len(pooled))
	if vectorizer.VocabularySize() == 0 {
		return []domain.OverlapFinding{}, nil
	}

	subjectVecs := vectorizer.TransformAll(subject)
	referenceVecs := vectorizer.TransformAll(reference)

	best := detectors.BestMatches(len(subjectVecs), len(referenceVecs), func(i, j int) float64 {
		return dot(subjectVecs[i], referenceVecs[j])
	})

	findings := detectors.Flag(subject, best, d.threshold, domain.OverlapExact)
	logger.Debug("lexical: %d of %d chunks at or above %.2f", len(findings), len(subject), d.threshold)
	return findings, nil
}
