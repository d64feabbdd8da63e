package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/extractors/docx"
	"github.com/custodia-labs/novelcheck/internal/extractors/html"
	"github.com/custodia-labs/novelcheck/internal/extractors/markdown"
	"github.com/custodia-labs/novelcheck/internal/extractors/pdf"
	"github.com/custodia-labs/novelcheck/internal/extractors/plaintext"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches extraction by file extension.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.TextExtractor
	fallback driven.TextExtractor
}

// NewRegistry creates a registry that uses fallback for unregistered extensions.
func NewRegistry(fallback driven.TextExtractor) *Registry {
	return &Registry{
		byExt:    make(map[string]driven.TextExtractor),
		fallback: fallback,
	}
}

// NewDefaultRegistry returns a registry handling PDF, DOCX, HTML and
// Markdown by extension and everything else as plain text.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(plaintext.New())
	r.Register(".pdf", pdf.New())
	r.Register(".docx", docx.New())

	htmlExtractor := html.New()
	r.Register(".html", htmlExtractor)
	r.Register(".htm", htmlExtractor)

	markdownExtractor := markdown.New()
	r.Register(".md", markdownExtractor)
	r.Register(".markdown", markdownExtractor)
	return r
}

// Register sets the extractor for a file extension (case-insensitive, with dot).
func (r *Registry) Register(ext string, extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[strings.ToLower(ext)] = extractor
}

// For returns the extractor used for path.
func (r *Registry) For(path string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return e
	}
	return r.fallback
}

// Extract returns the trimmed text of path.
func (r *Registry) Extract(ctx context.Context, path string) (string, error) {
	extractor := r.For(path)
	if extractor == nil {
		return "", fmt.Errorf("%w: no extractor for %s", domain.ErrExtraction, path)
	}

	text, err := extractor.Extract(ctx, path)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %w from %s", domain.ErrExtraction, domain.ErrNoText, path)
	}

	logger.Debug("extracted %d characters from %s", len(text), path)
	return text, nil
}
