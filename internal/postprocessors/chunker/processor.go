// Package chunker splits text into windows of sentence-like units,
// the atomic unit of plagiarism comparison.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Segmenter = (*Processor)(nil)

// DefaultChunkSize is the default number of sentence-like units per chunk.
const DefaultChunkSize = 5

// MinUnitLength is the trimmed length a unit must exceed to be kept.
// Shorter units are stray punctuation, page numbers and similar noise.
const MinUnitLength = 10

// unitDelimiter separates sentence-like units.
const unitDelimiter = "."

// Processor groups sentence-like units into non-overlapping chunks.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the number of units per chunk.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the number of units per chunk.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Units splits text on periods and keeps the trimmed units longer than
// MinUnitLength characters, in order.
func Units(text string) []string {
	parts := strings.Split(text, unitDelimiter)
	units := make([]string, 0, len(parts))
	for _, part := range parts {
		unit := strings.TrimSpace(part)
		if utf8.RuneCountInString(unit) > MinUnitLength {
			units = append(units, unit)
		}
	}
	return units
}

// Segment returns the chunk texts for text. The last chunk may hold fewer
// units than the chunk size; text without qualifying units yields nil.
func (p *Processor) Segment(text string) []string {
	units := Units(text)
	if len(units) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(units)+p.chunkSize-1)/p.chunkSize)
	for start := 0; start < len(units); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(units) {
			end = len(units)
		}
		chunks = append(chunks, strings.Join(units[start:end], " "))
	}
	return chunks
}

// Chunks segments text and tags each chunk with its document and position.
func (p *Processor) Chunks(documentID, text string) []domain.Chunk {
	texts := p.Segment(text)
	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: documentID,
			Position:   i,
			Text:       t,
		}
	}
	return chunks
}
