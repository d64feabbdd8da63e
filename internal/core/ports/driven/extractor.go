package driven

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// TextExtractor yields raw text for a document path.
// Implementations return domain.ErrExtraction when no usable text exists
// (with domain.ErrNoText when the document is readable but blank)
// and domain.ErrIO when the file cannot be read.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Segmenter splits raw text into comparison chunks.
type Segmenter interface {
	// Segment returns chunk texts in document order.
	Segment(text string) []string

	// Chunks segments text and tags each chunk with its document and position.
	Chunks(documentID, text string) []domain.Chunk
}
