package domain

import "time"

// IndexInfo describes a persisted vector index without loading its vectors.
type IndexInfo struct {
	IndexPath   string
	MappingPath string
	Size        int
	Dimension   int
	Model       string
	BuildID     string
	BuiltAt     time.Time
}

// BuildResult is the outcome of building a corpus index.
type BuildResult struct {
	IndexPath   string
	MappingPath string

	// Documents is the number of indexed documents, equal to the index size.
	Documents int

	// EmptyTexts counts documents indexed with no text.
	EmptyTexts int

	Dimension int
	Model     string
	BuildID   string
}
