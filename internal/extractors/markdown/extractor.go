// Package markdown extracts prose from Markdown documents.
package markdown

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor removes Markdown formatting, keeping the prose.
type Extractor struct{}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document text with formatting simplified.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", domain.ErrIO, path, err)
	}
	return stripMarkdown(string(data)), nil
}

var (
	codeBlock     = regexp.MustCompile("(?s)```.*?```")
	inlineCode    = regexp.MustCompile("`[^`]+`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*)`)
	blockquote    = regexp.MustCompile(`(?m)^>\s*`)
	horizontal    = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList  = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common Markdown syntax. Code is dropped because it
// is not prose and would dominate term statistics.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = horizontal.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
