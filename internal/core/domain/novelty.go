package domain

// Fallback values used when the mapping has no entry for a matched index position.
const (
	UnknownTitle = "Unknown title"
	UnknownURL   = "No URL"
)

// Verdict is the novelty classification of a single nearest-neighbour match.
type Verdict string

// Available verdicts.
const (
	// VerdictNotNovel means the match is at or above the similarity threshold.
	VerdictNotNovel Verdict = "not_novel"

	// VerdictLikelyNovel means the match is below the similarity threshold.
	VerdictLikelyNovel Verdict = "likely_novel"
)

// String returns the string representation.
func (v Verdict) String() string {
	return string(v)
}

// Description returns a human-readable description of the verdict.
func (v Verdict) Description() string {
	switch v {
	case VerdictNotNovel:
		return "This paper is NOT novel (very similar)."
	case VerdictLikelyNovel:
		return "Likely novel (no strong match)."
	default:
		return unknownDescription
	}
}

// SimilarityFromDistance converts a squared Euclidean distance into the
// similarity score the novelty threshold is calibrated against.
// It is deliberately 1 - d and not a cosine similarity.
func SimilarityFromDistance(distance float64) float64 {
	return 1 - distance
}

// Classify returns VerdictNotNovel when similarity >= threshold.
func Classify(similarity, threshold float64) Verdict {
	if similarity >= threshold {
		return VerdictNotNovel
	}
	return VerdictLikelyNovel
}

// NoveltyResult is one ranked match for a query paper.
type NoveltyResult struct {
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`

	// Index is the matched document's index position.
	Index int `json:"index"`

	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
	PDFPath    string  `json:"pdf_path"`
	Verdict    Verdict `json:"verdict"`
}

// NoveltyReport is the outcome of one novelty query.
type NoveltyReport struct {
	// Document is the path of the query paper.
	Document string

	// Threshold is the similarity threshold used for classification.
	Threshold float64

	// Results are ordered by descending similarity.
	Results []NoveltyResult

	// ResultPath is where the ranked results were persisted.
	ResultPath string
}

// IsNovel reports whether no match reached the threshold.
func (r *NoveltyReport) IsNovel() bool {
	for _, res := range r.Results {
		if res.Verdict == VerdictNotNovel {
			return false
		}
	}
	return true
}
