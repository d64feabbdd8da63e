package detectors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

func TestBestMatches(t *testing.T) {
	scores := [][]float64{
		{0.1, 0.7, 0.3},
		{-0.5, -0.2, -0.9},
	}

	best := BestMatches(2, 3, func(i, j int) float64 { return scores[i][j] })

	assert.Equal(t, []float64{0.7, -0.2}, best)
}

func TestBestMatches_NoReferences(t *testing.T) {
	best := BestMatches(2, 0, func(_, _ int) float64 { return 1 })
	assert.Equal(t, []float64{0, 0}, best)
}

func TestFlag_ThresholdBoundary(t *testing.T) {
	threshold := 0.8
	subject := []string{"exact", "below", "above"}
	best := []float64{threshold, math.Nextafter(threshold, 0), 0.95}

	findings := Flag(subject, best, threshold, domain.OverlapExact)

	require.Len(t, findings, 2)
	assert.Equal(t, "exact", findings[0].Chunk)
	assert.Equal(t, threshold, findings[0].Score)
	assert.Equal(t, "above", findings[1].Chunk)
	for _, f := range findings {
		assert.Equal(t, domain.OverlapExact, f.Type)
	}
}

func TestFlag_EmptyIsNotNil(t *testing.T) {
	findings := Flag(nil, nil, 0.5, domain.OverlapParaphrase)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestFlag_ClampsRoundingOvershoot(t *testing.T) {
	findings := Flag([]string{"same"}, []float64{1.0000000000000002}, 0.75, domain.OverlapParaphrase)
	require.Len(t, findings, 1)
	assert.Equal(t, 1.0, findings[0].Score)
}
