package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure PlagiarismService implements the interface.
var _ driving.PlagiarismService = (*PlagiarismService)(nil)

// PlagiarismService compares a document chunk by chunk against pooled references.
type PlagiarismService struct {
	extractor  driven.TextExtractor
	segmenter  driven.Segmenter
	exact      driven.OverlapDetector
	paraphrase driven.OverlapDetector
	results    driven.ResultStore
	policy     domain.ReferenceErrorPolicy
}

// NewPlagiarismService creates a new plagiarism service.
// An invalid policy falls back to failing on the first unreadable reference.
func NewPlagiarismService(
	extractor driven.TextExtractor,
	segmenter driven.Segmenter,
	exact, paraphrase driven.OverlapDetector,
	results driven.ResultStore,
	policy domain.ReferenceErrorPolicy,
) *PlagiarismService {
	if !policy.IsValid() {
		policy = domain.ReferenceErrorFail
	}
	return &PlagiarismService{
		extractor:  extractor,
		segmenter:  segmenter,
		exact:      exact,
		paraphrase: paraphrase,
		results:    results,
		policy:     policy,
	}
}

// Check runs the lexical then the semantic detector over the subject and the
// pooled reference chunks and writes the merged report to req.OutputPath.
func (s *PlagiarismService) Check(ctx context.Context, req domain.PlagiarismRequest) (*domain.PlagiarismReport, error) {
	logger.Section("Plagiarism Check")

	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("%w: subject path is required", domain.ErrInvalidInput)
	}
	if len(req.References) == 0 {
		return nil, fmt.Errorf("%w: at least one reference path is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, fmt.Errorf("%w: output path is required", domain.ErrInvalidInput)
	}

	policy := s.policy
	if req.OnReferenceError != "" {
		if !req.OnReferenceError.IsValid() {
			return nil, fmt.Errorf("%w: unknown reference error policy %q", domain.ErrInvalidInput, req.OnReferenceError)
		}
		policy = req.OnReferenceError
	}
	logger.Debug("Subject: %s, references: %d, policy: %s", req.Subject, len(req.References), policy)

	subjectText, err := s.extract(ctx, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", req.Subject, err)
	}
	subjectChunks := domain.ChunkTexts(s.segmenter.Chunks(req.Subject, subjectText))

	var (
		referenceChunks []string
		omitted         []domain.OmittedReference
	)
	for _, ref := range req.References {
		text, err := s.extract(ctx, ref)
		if err != nil {
			if policy == domain.ReferenceErrorFail {
				return nil, fmt.Errorf("reference %s: %w", ref, err)
			}
			logger.Warn("skipping unreadable reference %s: %v", ref, err)
			omitted = append(omitted, domain.OmittedReference{Path: ref, Reason: err.Error()})
			continue
		}
		chunks := s.segmenter.Chunks(ref, text)
		logger.Debug("Reference %s: %d chunks", ref, len(chunks))
		referenceChunks = append(referenceChunks, domain.ChunkTexts(chunks)...)
	}
	logger.Debug("Subject chunks: %d, pooled reference chunks: %d", len(subjectChunks), len(referenceChunks))

	exact, err := s.exact.Detect(ctx, subjectChunks, referenceChunks)
	if err != nil {
		return nil, fmt.Errorf("%s detection: %w", s.exact.Type(), err)
	}
	paraphrase, err := s.paraphrase.Detect(ctx, subjectChunks, referenceChunks)
	if err != nil {
		return nil, fmt.Errorf("%s detection: %w", s.paraphrase.Type(), err)
	}

	references := make([]string, len(req.References))
	copy(references, req.References)
	report := domain.NewPlagiarismReport(req.Subject, references, exact, paraphrase, omitted)

	if err := s.results.SavePlagiarism(ctx, req.OutputPath, report); err != nil {
		return nil, fmt.Errorf("save report: %w", classify(domain.ErrIO, err))
	}
	logger.Debug("Report written to %s (exact=%d, paraphrase=%d)",
		req.OutputPath, report.Summary.ExactOverlapCount, report.Summary.ParaphraseOverlapCount)
	return report, nil
}

// extract reads a document. A readable but blank document yields no chunks
// rather than an error.
func (s *PlagiarismService) extract(ctx context.Context, path string) (string, error) {
	text, err := s.extractor.Extract(ctx, path)
	if errors.Is(err, domain.ErrNoText) {
		logger.Debug("No text in %s, comparing zero chunks", path)
		return "", nil
	}
	if err != nil {
		return "", classify(domain.ErrExtraction, err)
	}
	return text, nil
}
