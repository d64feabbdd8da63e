package extractors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/extractors/docx"
	"github.com/custodia-labs/novelcheck/internal/extractors/html"
	"github.com/custodia-labs/novelcheck/internal/extractors/markdown"
	"github.com/custodia-labs/novelcheck/internal/extractors/pdf"
	"github.com/custodia-labs/novelcheck/internal/extractors/plaintext"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestRegistry_DispatchByExtension(t *testing.T) {
	r := NewRegistry(stubExtractor{text: "plain"})
	r.Register(".PDF", stubExtractor{text: "  from pdf \n"})

	text, err := r.Extract(context.Background(), "paper.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	text, err = r.Extract(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}

func TestRegistry_EmptyTextIsExtractionError(t *testing.T) {
	r := NewRegistry(stubExtractor{text: " \n\t "})

	_, err := r.Extract(context.Background(), "blank.txt")

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, domain.ErrNoText)
	assert.Equal(t, domain.KindExtraction, domain.KindOf(err))
}

func TestRegistry_PropagatesErrors(t *testing.T) {
	r := NewRegistry(stubExtractor{err: errors.Join(domain.ErrIO, errors.New("denied"))})

	_, err := r.Extract(context.Background(), "x.txt")

	assert.ErrorIs(t, err, domain.ErrIO)
	assert.NotErrorIs(t, err, domain.ErrNoText)
}

func TestRegistry_NoFallback(t *testing.T) {
	_, err := NewRegistry(nil).Extract(context.Background(), "x.doc")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	assert.IsType(t, &pdf.Extractor{}, r.For("a.pdf"))
	assert.IsType(t, &docx.Extractor{}, r.For("a.DOCX"))
	assert.IsType(t, &html.Extractor{}, r.For("a.htm"))
	assert.IsType(t, &markdown.Extractor{}, r.For("a.md"))
	assert.IsType(t, &plaintext.Extractor{}, r.For("a.txt"))
	assert.IsType(t, &plaintext.Extractor{}, r.For("README"))

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n  Some text.  \n"), 0644))
	text, err := r.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Some text.", text)
}
