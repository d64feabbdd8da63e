package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// NoveltySuffix is appended to the query document's base name to form the
// result artifact name.
const NoveltySuffix = "_similar.json"

// Verify interface compliance.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore writes result artifacts as indented JSON.
type ResultStore struct {
	resultsDir string
}

// NewResultStore creates a store writing novelty results under resultsDir.
func NewResultStore(resultsDir string) *ResultStore {
	return &ResultStore{resultsDir: resultsDir}
}

// NoveltyPath returns the artifact path for a query document:
// the base name without extension plus NoveltySuffix, under the results directory.
func (r *ResultStore) NoveltyPath(documentPath string) string {
	base := filepath.Base(documentPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(r.resultsDir, base+NoveltySuffix)
}

// SaveNovelty writes the ranked results and returns the artifact path.
func (r *ResultStore) SaveNovelty(_ context.Context, documentPath string, results []domain.NoveltyResult) (string, error) {
	if results == nil {
		results = []domain.NoveltyResult{}
	}
	path := r.NoveltyPath(documentPath)
	if err := writeJSON(path, results); err != nil {
		return "", err
	}
	return path, nil
}

// SavePlagiarism writes the report at path.
func (r *ResultStore) SavePlagiarism(_ context.Context, path string, report *domain.PlagiarismReport) error {
	if report == nil {
		return fmt.Errorf("%w: nil report", domain.ErrInvalidInput)
	}
	return writeJSON(path, report)
}

// writeJSON encodes v with two-space indentation into a temporary file in
// the target directory and renames it over path.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", domain.ErrIO, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", domain.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temporary file in %s: %w", domain.ErrIO, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIO, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIO, path, err)
	}
	return nil
}
