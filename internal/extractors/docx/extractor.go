// Package docx extracts paragraph text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor reads word/document.xml out of the DOCX zip container.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document's paragraphs, one per line.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", domain.ErrIO, path, err)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a DOCX archive: %w", domain.ErrExtraction, path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}
		content, err := readPart(file)
		if err != nil {
			return "", fmt.Errorf("%w: reading %s in %s: %w", domain.ErrExtraction, documentPart, path, err)
		}
		return parseDocumentXML(content)
	}

	return "", fmt.Errorf("%w: %s has no %s", domain.ErrExtraction, path, documentPart)
}

func readPart(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML joins the text runs of each paragraph.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: malformed %s: %w", domain.ErrExtraction, documentPart, err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
