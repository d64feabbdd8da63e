package domain

// Chunk is a window of consecutive sentence-like units taken from one document.
// It has no identity beyond its text and the document it came from.
type Chunk struct {
	// DocumentID identifies the source document (its path for plagiarism checks).
	DocumentID string

	// Position is the ordinal position within the document.
	Position int

	// Text is the units of the window joined by single spaces.
	Text string
}

// ChunkTexts returns the text of each chunk, preserving order.
func ChunkTexts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	return texts
}

// OverlapType tags which detector produced a finding.
type OverlapType string

// Available overlap types.
const (
	// OverlapExact is produced by the lexical (TF-IDF) detector.
	OverlapExact OverlapType = "exact_overlap"

	// OverlapParaphrase is produced by the semantic (embedding) detector.
	OverlapParaphrase OverlapType = "paraphrase_overlap"
)

// String returns the string representation.
func (t OverlapType) String() string {
	return string(t)
}

// OverlapFinding is a subject chunk whose best match against the pooled
// reference chunks met the detector's threshold.
type OverlapFinding struct {
	Chunk string      `json:"chunk"`
	Score float64     `json:"score"`
	Type  OverlapType `json:"type"`
}

// ReferenceErrorPolicy decides what happens when a reference cannot be read.
type ReferenceErrorPolicy string

// Available policies.
const (
	// ReferenceErrorFail aborts the whole check.
	ReferenceErrorFail ReferenceErrorPolicy = "fail"

	// ReferenceErrorSkip drops the reference and records it in the summary.
	ReferenceErrorSkip ReferenceErrorPolicy = "skip"
)

// IsValid returns true if the policy is recognised.
func (p ReferenceErrorPolicy) IsValid() bool {
	return p == ReferenceErrorFail || p == ReferenceErrorSkip
}

// String returns the string representation.
func (p ReferenceErrorPolicy) String() string {
	return string(p)
}

// OmittedReference records a reference skipped because it could not be read.
type OmittedReference struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// PlagiarismSummary holds per-detector finding counts.
type PlagiarismSummary struct {
	ExactOverlapCount      int                `json:"exact_overlap_count"`
	ParaphraseOverlapCount int                `json:"paraphrase_overlap_count"`
	OmittedReferences      []OmittedReference `json:"omitted_references,omitempty"`
}

// PlagiarismReport is the merged output of both overlap detectors.
type PlagiarismReport struct {
	Paper             string            `json:"paper"`
	References        []string          `json:"references"`
	ExactOverlap      []OverlapFinding  `json:"exact_overlap"`
	ParaphraseOverlap []OverlapFinding  `json:"paraphrase_overlap"`
	Summary           PlagiarismSummary `json:"summary"`
}

// NewPlagiarismReport assembles a report and derives its summary counts.
// Nil finding lists are normalised to empty lists.
func NewPlagiarismReport(
	paper string, references []string, exact, paraphrase []OverlapFinding, omitted []OmittedReference,
) *PlagiarismReport {
	if references == nil {
		references = []string{}
	}
	if exact == nil {
		exact = []OverlapFinding{}
	}
	if paraphrase == nil {
		paraphrase = []OverlapFinding{}
	}
	return &PlagiarismReport{
		Paper:             paper,
		References:        references,
		ExactOverlap:      exact,
		ParaphraseOverlap: paraphrase,
		Summary: PlagiarismSummary{
			ExactOverlapCount:      len(exact),
			ParaphraseOverlapCount: len(paraphrase),
			OmittedReferences:      omitted,
		},
	}
}

// PlagiarismRequest describes one plagiarism check.
type PlagiarismRequest struct {
	// Subject is the path of the document being checked.
	Subject string

	// References are the paths of the documents compared against.
	References []string

	// OutputPath is where the report is written.
	OutputPath string

	// OnReferenceError overrides the configured policy when set.
	OnReferenceError ReferenceErrorPolicy
}
