package markdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "# Title\n\nBody text.", "Title\n\nBody text."},
		{"bold and italic", "This is **bold** and *italic*.", "This is bold and italic."},
		{"link keeps text", "See [the paper](https://example.org).", "See the paper."},
		{"image removed", "Figure ![plot](fig.png) here.", "Figure  here."},
		{"inline code removed", "Call `run()` now.", "Call  now."},
		{"code block removed", "Before.\n```go\nfmt.Println(1)\n```\nAfter.", "Before.\n\nAfter."},
		{"list markers", "- first item\n- second item", "first item\nsecond item"},
		{"numbered list", "1. one\n2. two", "one\ntwo"},
		{"blockquote", "> quoted words", "quoted words"},
		{"horizontal rule", "Above.\n---\nBelow.", "Above.\n\nBelow."},
		{"snake case kept", "The snake_case name.", "The snake_case name."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("## Method\r\nWe use **TF-IDF** weights.\r\n"), 0644))

	text, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Method\nWe use TF-IDF weights.", text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "missing.md"))

	assert.ErrorIs(t, err, domain.ErrIO)
}
