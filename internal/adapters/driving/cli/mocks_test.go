package cli

import (
	"context"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	result *domain.BuildResult
	info   *domain.IndexInfo
	err    error
}

func (m *mockIndexService) Build(_ context.Context) (*domain.BuildResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockIndexService) Info(_ context.Context) (*domain.IndexInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

// mockNoveltyService implements driving.NoveltyService for testing.
type mockNoveltyService struct {
	report *domain.NoveltyReport
	err    error

	gotPath string
	gotTopK int
}

func (m *mockNoveltyService) Query(_ context.Context, documentPath string, topK int) (*domain.NoveltyReport, error) {
	m.gotPath = documentPath
	m.gotTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

// mockPlagiarismService implements driving.PlagiarismService for testing.
type mockPlagiarismService struct {
	report *domain.PlagiarismReport
	err    error

	got domain.PlagiarismRequest
}

func (m *mockPlagiarismService) Check(_ context.Context, req domain.PlagiarismRequest) (*domain.PlagiarismReport, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}
