package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Known texts map to fixed vectors; anything else embeds to the zero vector.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	dims       int
	model      string
	embedErr   error
	short      bool
	embedCalls int
	batchCalls int
	batchSizes []int
}

func newMockEmbedder(dims int, vectors map[string][]float32) *mockEmbeddingService {
	return &mockEmbeddingService{vectors: vectors, dims: dims, model: "mock-embed"}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	return make([]float32, m.dims)
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vector(text)
	}
	if m.short && len(result) > 0 {
		result = result[:len(result)-1]
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }

func (m *mockEmbeddingService) ModelName() string { return m.model }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockMetadataSource implements driven.MetadataSource for testing.
type mockMetadataSource struct {
	docs  []domain.Document
	err   error
	loads int
}

func (m *mockMetadataSource) Load(_ context.Context) ([]domain.Document, error) {
	m.loads++
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockMetadataSource) Path() string { return "papers.json" }

// corpus builds sequentially numbered documents from texts.
func corpus(texts ...string) []domain.Document {
	docs := make([]domain.Document, len(texts))
	for i, text := range texts {
		docs[i] = domain.Document{
			ID:      i,
			Title:   "Paper " + string(rune('A'+i)),
			URL:     "https://example.org/" + string(rune('a'+i)),
			PDFPath: "pdfs/" + string(rune('a'+i)) + ".pdf",
			Text:    text,
		}
	}
	return docs
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	m.calls = append(m.calls, path)
	if err, ok := m.errs[path]; ok {
		return "", err
	}
	if text, ok := m.texts[path]; ok {
		return text, nil
	}
	return "", errors.New("no such file")
}

// mockResultStore implements driven.ResultStore for testing.
type mockResultStore struct {
	novelty        []domain.NoveltyResult
	noveltyDoc     string
	report         *domain.PlagiarismReport
	reportPath     string
	err            error
	plagiarismSave int
}

func (m *mockResultStore) SaveNovelty(_ context.Context, documentPath string, results []domain.NoveltyResult) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.noveltyDoc = documentPath
	m.novelty = results
	return "results/" + documentPath + "_similar.json", nil
}

func (m *mockResultStore) SavePlagiarism(_ context.Context, path string, report *domain.PlagiarismReport) error {
	m.plagiarismSave++
	if m.err != nil {
		return m.err
	}
	m.reportPath = path
	m.report = report
	return nil
}

// mockDetector implements driven.OverlapDetector for testing.
type mockDetector struct {
	typ          domain.OverlapType
	findings     []domain.OverlapFinding
	err          error
	gotSubject   []string
	gotReference []string
}

func (m *mockDetector) Type() domain.OverlapType { return m.typ }

func (m *mockDetector) Detect(_ context.Context, subject, reference []string) ([]domain.OverlapFinding, error) {
	m.gotSubject = subject
	m.gotReference = reference
	if m.err != nil {
		return nil, m.err
	}
	return m.findings, nil
}
