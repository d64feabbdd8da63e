// Package detectors holds the logic shared by the overlap detectors:
// best-match reduction and threshold selection.
//
// Each detector scores every subject chunk against every pooled reference
// chunk, keeps the best score per subject chunk, and reports the chunks
// whose best score meets its threshold.
package detectors

import (
	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// BestMatches returns, for each of n subject rows, the maximum of
// score(i, j) over j in [0, m). Rows are scored independently, so m == 0
// leaves every row at its zero value and callers must skip that case.
func BestMatches(n, m int, score func(i, j int) float64) []float64 {
	best := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			s := score(i, j)
			if j == 0 || s > best[i] {
				best[i] = s
			}
		}
	}
	return best
}

// Flag selects the subject chunks whose best score is >= threshold,
// preserving subject order.
func Flag(subject []string, best []float64, threshold float64, typ domain.OverlapType) []domain.OverlapFinding {
	findings := make([]domain.OverlapFinding, 0)
	for i, chunk := range subject {
		if best[i] >= threshold {
			findings = append(findings, domain.OverlapFinding{
				Chunk: chunk,
				Score: clampScore(best[i]),
				Type:  typ,
			})
		}
	}
	return findings
}

// clampScore removes rounding overshoot above 1 from normalised dot products.
func clampScore(s float64) float64 {
	if s > 1 {
		return 1
	}
	return s
}
