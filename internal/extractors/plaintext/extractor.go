// Package plaintext reads text documents as UTF-8.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads a file's bytes as text.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the file content. Invalid UTF-8 sequences become U+FFFD.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", domain.ErrIO, path, err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return strings.TrimPrefix(text, "\ufeff"), nil
}
