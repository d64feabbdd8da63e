package domain

import (
	"sort"
	"strconv"
)

// Document is a paper in the reference corpus.
// Its ID is its position in the vector index and never changes for the
// lifetime of a persisted index.
type Document struct {
	// ID is the sequential index position, starting at 0.
	ID int

	// Title is the paper title from the corpus metadata.
	Title string

	// URL is the paper's source location.
	URL string

	// PDFPath is the optional path to the original PDF.
	PDFPath string

	// Text is the resolved full text. Empty when no text source exists.
	Text string
}

// MappingEntry is the metadata kept for one index position.
type MappingEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	PDFPath string `json:"pdf_path,omitempty"`
}

// IDMapping maps an index position, string-keyed for serialisation,
// to the paper metadata stored at that position.
type IDMapping map[string]MappingEntry

// MappingKey returns the serialised key for an index position.
func MappingKey(id int) string {
	return strconv.Itoa(id)
}

// NewIDMapping builds a mapping with exactly one entry per document.
func NewIDMapping(docs []Document) IDMapping {
	m := make(IDMapping, len(docs))
	for _, doc := range docs {
		m[MappingKey(doc.ID)] = MappingEntry{
			Title:   doc.Title,
			URL:     doc.URL,
			PDFPath: doc.PDFPath,
		}
	}
	return m
}

// Lookup returns the entry for an index position.
func (m IDMapping) Lookup(id int) (MappingEntry, bool) {
	entry, ok := m[MappingKey(id)]
	return entry, ok
}

// Keys returns the mapping keys in ascending numeric order.
// Non-numeric keys sort after numeric ones, lexically.
func (m IDMapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
