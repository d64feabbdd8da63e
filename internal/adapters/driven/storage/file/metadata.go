package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Verify interface compliance.
var _ driven.MetadataSource = (*MetadataSource)(nil)

// paperRecord is one entry of the corpus metadata file. Other fields are ignored.
type paperRecord struct {
	Title   string `json:"title" yaml:"title"`
	URL     string `json:"url" yaml:"url"`
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`
}

// MetadataSource reads corpus documents from a metadata file and resolves
// each document's text from a directory of pre-extracted .txt files.
type MetadataSource struct {
	path          string
	parsedTextDir string
}

// NewMetadataSource creates a source for the metadata file at path.
func NewMetadataSource(path, parsedTextDir string) *MetadataSource {
	return &MetadataSource{path: path, parsedTextDir: parsedTextDir}
}

// Path returns the metadata file location.
func (m *MetadataSource) Path() string {
	return m.path
}

// Load returns every record in file order with IDs 0..n-1.
// A record without a resolvable text file is returned with empty Text.
func (m *MetadataSource) Load(ctx context.Context) ([]domain.Document, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading metadata %s: %w", domain.ErrIO, m.path, err)
	}

	records, err := decodeRecords(m.path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing metadata %s: %w", domain.ErrIO, m.path, err)
	}

	docs := make([]domain.Document, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := m.resolveText(rec.PDFPath)
		if err != nil {
			return nil, err
		}
		if text == "" {
			logger.Warn("no parsed text for document %d (%q), indexing empty text", i, rec.Title)
		}

		docs[i] = domain.Document{
			ID:      i,
			Title:   rec.Title,
			URL:     rec.URL,
			PDFPath: rec.PDFPath,
			Text:    text,
		}
	}

	logger.Debug("loaded %d documents from %s", len(docs), m.path)
	return docs, nil
}

// TextPath returns where the parsed text for pdfPath is expected,
// or "" when pdfPath is empty.
func (m *MetadataSource) TextPath(pdfPath string) string {
	if pdfPath == "" {
		return ""
	}
	name := strings.ReplaceAll(filepath.Base(pdfPath), ".pdf", ".txt")
	return filepath.Join(m.parsedTextDir, name)
}

// resolveText reads the parsed text for a record. A missing file is not an error.
func (m *MetadataSource) resolveText(pdfPath string) (string, error) {
	textPath := m.TextPath(pdfPath)
	if textPath == "" {
		return "", nil
	}

	data, err := os.ReadFile(textPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: reading parsed text %s: %w", domain.ErrIO, textPath, err)
	}
	return string(data), nil
}

func decodeRecords(path string, data []byte) ([]paperRecord, error) {
	var records []paperRecord

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	}

	return records, nil
}
