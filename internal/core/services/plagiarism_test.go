package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/detectors/lexical"
	"github.com/custodia-labs/novelcheck/internal/detectors/semantic"
	"github.com/custodia-labs/novelcheck/internal/extractors"
	"github.com/custodia-labs/novelcheck/internal/postprocessors/chunker"
)

const (
	foxSentence       = "The quick brown fox jumps over the lazy dog."
	foxChunk          = "The quick brown fox jumps over the lazy dog"
	paraphraseChunk   = "A fast fox leapt above a sleepy dog"
	unrelatedSentence = "Spectral graph theory studies eigenvalues of adjacency matrices."
)

type plagiarismFixture struct {
	extractor  *mockExtractor
	exact      *mockDetector
	paraphrase *mockDetector
	results    *mockResultStore
}

func newPlagiarismFixture(texts map[string]string) *plagiarismFixture {
	return &plagiarismFixture{
		extractor:  &mockExtractor{texts: texts},
		exact:      &mockDetector{typ: domain.OverlapExact},
		paraphrase: &mockDetector{typ: domain.OverlapParaphrase},
		results:    &mockResultStore{},
	}
}

func (f *plagiarismFixture) service(policy domain.ReferenceErrorPolicy) *PlagiarismService {
	return NewPlagiarismService(f.extractor, chunker.New(chunker.WithChunkSize(1)), f.exact, f.paraphrase, f.results, policy)
}

func TestPlagiarism_Check_MergesDetectors(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{
		"paper.txt": foxSentence,
		"ref1.txt":  unrelatedSentence,
		"ref2.txt":  foxSentence,
	})
	f.exact.findings = []domain.OverlapFinding{{Chunk: foxChunk, Score: 1, Type: domain.OverlapExact}}

	report, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ref1.txt", "ref2.txt"},
		OutputPath: "out/report.json",
	})

	require.NoError(t, err)
	assert.Equal(t, "paper.txt", report.Paper)
	assert.Equal(t, []string{"ref1.txt", "ref2.txt"}, report.References)
	assert.Len(t, report.ExactOverlap, 1)
	assert.Empty(t, report.ParaphraseOverlap)
	assert.NotNil(t, report.ParaphraseOverlap)
	assert.Equal(t, 1, report.Summary.ExactOverlapCount)
	assert.Equal(t, 0, report.Summary.ParaphraseOverlapCount)
	assert.Empty(t, report.Summary.OmittedReferences)

	// Both detectors see the same chunks; references are pooled in order.
	assert.Equal(t, []string{foxChunk}, f.exact.gotSubject)
	assert.Equal(t, []string{"Spectral graph theory studies eigenvalues of adjacency matrices", foxChunk}, f.exact.gotReference)
	assert.Equal(t, f.exact.gotSubject, f.paraphrase.gotSubject)
	assert.Equal(t, f.exact.gotReference, f.paraphrase.gotReference)

	assert.Equal(t, "out/report.json", f.results.reportPath)
	assert.Same(t, report, f.results.report)
}

func TestPlagiarism_Check_RequiresReferences(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence})

	_, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		OutputPath: "out.json",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.extractor.calls)
}

func TestPlagiarism_Check_RequiresPaths(t *testing.T) {
	f := newPlagiarismFixture(nil)
	service := f.service(domain.ReferenceErrorFail)

	_, err := service.Check(context.Background(), domain.PlagiarismRequest{References: []string{"r"}, OutputPath: "o"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.Check(context.Background(), domain.PlagiarismRequest{Subject: "s", References: []string{"r"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlagiarism_Check_UnreadableReferenceFails(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence, "ok.txt": foxSentence})
	f.extractor.errs = map[string]error{"gone.txt": domain.ErrIO}

	_, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ok.txt", "gone.txt"},
		OutputPath: "out.json",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Contains(t, err.Error(), "gone.txt")
	assert.Zero(t, f.results.plagiarismSave, "no partial report is written")
	assert.Nil(t, f.exact.gotSubject)
}

func TestPlagiarism_Check_UnreadableReferenceSkipped(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence, "ok.txt": unrelatedSentence})
	f.extractor.errs = map[string]error{"gone.txt": errors.New("no such file")}

	report, err := f.service(domain.ReferenceErrorSkip).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"gone.txt", "ok.txt"},
		OutputPath: "out.json",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"gone.txt", "ok.txt"}, report.References)
	require.Len(t, report.Summary.OmittedReferences, 1)
	assert.Equal(t, "gone.txt", report.Summary.OmittedReferences[0].Path)
	assert.Contains(t, report.Summary.OmittedReferences[0].Reason, "no such file")
	assert.Len(t, f.exact.gotReference, 1)
}

func TestPlagiarism_Check_RequestOverridesPolicy(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence})
	f.extractor.errs = map[string]error{"gone.txt": domain.ErrIO}

	report, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:          "paper.txt",
		References:       []string{"gone.txt"},
		OutputPath:       "out.json",
		OnReferenceError: domain.ReferenceErrorSkip,
	})

	require.NoError(t, err)
	assert.Len(t, report.Summary.OmittedReferences, 1)
	assert.Empty(t, f.exact.gotReference)

	_, err = f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:          "paper.txt",
		References:       []string{"gone.txt"},
		OutputPath:       "out.json",
		OnReferenceError: "ignore",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlagiarism_Check_SubjectFailureIsFatal(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"ref.txt": foxSentence})

	_, err := f.service(domain.ReferenceErrorSkip).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "missing.pdf",
		References: []string{"ref.txt"},
		OutputPath: "out.json",
	})

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Zero(t, f.results.plagiarismSave)
}

func TestPlagiarism_Check_DetectorError(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence, "ref.txt": foxSentence})
	f.paraphrase.err = domain.ErrProviderUnavailable

	_, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ref.txt"},
		OutputPath: "out.json",
	})

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Zero(t, f.results.plagiarismSave)
}

func TestPlagiarism_Check_SaveFailure(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence, "ref.txt": foxSentence})
	f.results.err = errors.New("read-only file system")

	_, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ref.txt"},
		OutputPath: "out.json",
	})

	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestPlagiarism_Check_BlankReferenceIsNotAnError(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{"paper.txt": foxSentence, "ref1.txt": foxSentence})
	f.extractor.errs = map[string]error{
		"empty.txt": fmt.Errorf("%w: %w from empty.txt", domain.ErrExtraction, domain.ErrNoText),
	}

	report, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ref1.txt", "empty.txt"},
		OutputPath: "out.json",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"ref1.txt", "empty.txt"}, report.References)
	assert.Empty(t, report.Summary.OmittedReferences)
	assert.Equal(t, []string{foxChunk}, f.exact.gotReference)
	assert.Equal(t, 1, f.results.plagiarismSave)
}

func TestPlagiarism_Check_BlankSubjectHasNoFindings(t *testing.T) {
	results := &mockResultStore{}
	service := NewPlagiarismService(
		extractors.NewRegistry(&mockExtractor{texts: map[string]string{"paper.txt": "  \n", "ref.txt": foxSentence}}),
		chunker.New(chunker.WithChunkSize(1)),
		lexical.New(domain.DefaultExactThreshold),
		semantic.New(newMockEmbedder(2, nil), domain.DefaultParaphraseThreshold),
		results,
		domain.ReferenceErrorFail,
	)

	report, err := service.Check(context.Background(), domain.PlagiarismRequest{
		Subject: "paper.txt", References: []string{"ref.txt"}, OutputPath: "out.json",
	})

	require.NoError(t, err)
	assert.Empty(t, report.ExactOverlap)
	assert.Empty(t, report.ParaphraseOverlap)
	assert.Equal(t, 1, results.plagiarismSave)
}

func TestPlagiarism_Check_ChunksArePooledInReferenceOrder(t *testing.T) {
	f := newPlagiarismFixture(map[string]string{
		"paper.txt": foxSentence + " " + unrelatedSentence,
		"ref1.txt":  unrelatedSentence,
		"ref2.txt":  foxSentence + " " + foxSentence,
	})

	_, err := f.service(domain.ReferenceErrorFail).Check(context.Background(), domain.PlagiarismRequest{
		Subject:    "paper.txt",
		References: []string{"ref1.txt", "ref2.txt"},
		OutputPath: "out.json",
	})

	require.NoError(t, err)
	unrelatedChunk := "Spectral graph theory studies eigenvalues of adjacency matrices"
	assert.Equal(t, []string{foxChunk, unrelatedChunk}, f.exact.gotSubject)
	assert.Equal(t, []string{unrelatedChunk, foxChunk, foxChunk}, f.exact.gotReference)
}

func TestNewPlagiarismService_InvalidPolicyFallsBackToFail(t *testing.T) {
	f := newPlagiarismFixture(nil)
	assert.Equal(t, domain.ReferenceErrorFail, f.service("bogus").policy)
}

// ==================== With real detectors ====================

func realDetectorService(results *mockResultStore, texts map[string]string) *PlagiarismService {
	embedder := newMockEmbedder(2, map[string][]float32{
		foxChunk:        {1, 0},
		paraphraseChunk: {0.95, 0.3122},
	})
	return NewPlagiarismService(
		&mockExtractor{texts: texts},
		chunker.New(chunker.WithChunkSize(1)),
		lexical.New(domain.DefaultExactThreshold),
		semantic.New(embedder, domain.DefaultParaphraseThreshold),
		results,
		domain.ReferenceErrorFail,
	)
}

func TestPlagiarism_Check_VerbatimCopyIsExactOverlap(t *testing.T) {
	results := &mockResultStore{}
	service := realDetectorService(results, map[string]string{
		"paper.txt": foxSentence,
		"ref.txt":   unrelatedSentence + " " + foxSentence,
	})

	report, err := service.Check(context.Background(), domain.PlagiarismRequest{
		Subject: "paper.txt", References: []string{"ref.txt"}, OutputPath: "out.json",
	})

	require.NoError(t, err)
	require.Len(t, report.ExactOverlap, 1)
	assert.Equal(t, foxChunk, report.ExactOverlap[0].Chunk)
	assert.GreaterOrEqual(t, report.ExactOverlap[0].Score, 0.80)
	assert.Equal(t, domain.OverlapExact, report.ExactOverlap[0].Type)
}

func TestPlagiarism_Check_ParaphraseIsOnlySemantic(t *testing.T) {
	results := &mockResultStore{}
	service := realDetectorService(results, map[string]string{
		"paper.txt": foxSentence,
		"ref.txt":   "A fast fox leapt above a sleepy dog.",
	})

	report, err := service.Check(context.Background(), domain.PlagiarismRequest{
		Subject: "paper.txt", References: []string{"ref.txt"}, OutputPath: "out.json",
	})

	require.NoError(t, err)
	assert.Empty(t, report.ExactOverlap)
	require.Len(t, report.ParaphraseOverlap, 1)
	assert.Equal(t, foxChunk, report.ParaphraseOverlap[0].Chunk)
	assert.Equal(t, domain.OverlapParaphrase, report.ParaphraseOverlap[0].Type)
	assert.Equal(t, 0, report.Summary.ExactOverlapCount)
	assert.Equal(t, 1, report.Summary.ParaphraseOverlapCount)
}

func TestPlagiarism_Check_NoOverlap(t *testing.T) {
	results := &mockResultStore{}
	service := realDetectorService(results, map[string]string{
		"paper.txt": foxSentence,
		"ref.txt":   unrelatedSentence,
	})

	report, err := service.Check(context.Background(), domain.PlagiarismRequest{
		Subject: "paper.txt", References: []string{"ref.txt"}, OutputPath: "out.json",
	})

	require.NoError(t, err)
	assert.Empty(t, report.ExactOverlap)
	assert.Empty(t, report.ParaphraseOverlap)
	assert.Zero(t, report.Summary.ExactOverlapCount)
	assert.Zero(t, report.Summary.ParaphraseOverlapCount)
	assert.Equal(t, 1, results.plagiarismSave)
}
