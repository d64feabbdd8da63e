package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

// QueryNoveltyInput is the input schema for the query_novelty tool.
type QueryNoveltyInput struct {
	DocumentPath string `json:"document_path" jsonschema:"path of the paper to check (PDF or text)"`
	TopK         int    `json:"top_k,omitempty" jsonschema:"number of nearest corpus papers to return (default from settings)"`
}

// QueryNoveltyOutput is the output schema for the query_novelty tool.
type QueryNoveltyOutput struct {
	Document   string         `json:"document"`
	Threshold  float64        `json:"threshold"`
	Novel      bool           `json:"novel"`
	Matches    []NoveltyMatch `json:"matches"`
	ResultPath string         `json:"result_path"`
}

// NoveltyMatch represents a single ranked corpus paper.
type NoveltyMatch struct {
	Rank       int     `json:"rank"`
	Index      int     `json:"index"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Similarity float64 `json:"similarity"`
	PDFPath    string  `json:"pdf_path,omitempty"`
	Verdict    string  `json:"verdict"`
}

// CheckPlagiarismInput is the input schema for the check_plagiarism tool.
type CheckPlagiarismInput struct {
	SubjectPath    string   `json:"subject_path" jsonschema:"path of the document being checked"`
	ReferencePaths []string `json:"reference_paths" jsonschema:"paths of the reference documents"`
	OutputPath     string   `json:"output_path" jsonschema:"where to write the JSON report"`
	SkipUnreadable bool     `json:"skip_unreadable,omitempty" jsonschema:"skip unreadable references instead of failing"`
}

// CheckPlagiarismOutput is the output schema for the check_plagiarism tool.
type CheckPlagiarismOutput struct {
	ExactOverlap      []domain.OverlapFinding   `json:"exact_overlap"`
	ParaphraseOverlap []domain.OverlapFinding   `json:"paraphrase_overlap"`
	ExactCount        int                       `json:"exact_overlap_count"`
	ParaphraseCount   int                       `json:"paraphrase_overlap_count"`
	Omitted           []domain.OmittedReference `json:"omitted_references,omitempty"`
	ReportPath        string                    `json:"report_path"`
}

// IndexInfoInput is the (empty) input schema for the index_info tool.
type IndexInfoInput struct{}

// IndexInfoOutput is the output schema for the index_info tool.
type IndexInfoOutput struct {
	IndexPath   string `json:"index_path"`
	MappingPath string `json:"mapping_path"`
	Size        int    `json:"size"`
	Dimension   int    `json:"dimension"`
	Model       string `json:"model"`
	BuildID     string `json:"build_id"`
	BuiltAt     string `json:"built_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose backing service is absent are not advertised.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_novelty",
		Description: "Rank the corpus papers most similar to a document and judge its novelty",
	}, s.handleQueryNovelty)

	if s.ports.Plagiarism != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "check_plagiarism",
			Description: "Flag passages of a document that overlap with reference documents",
		}, s.handleCheckPlagiarism)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_info",
			Description: "Describe the published corpus index",
		}, s.handleIndexInfo)
	}
}

// handleQueryNovelty handles the query_novelty tool invocation.
func (s *Server) handleQueryNovelty(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryNoveltyInput,
) (*mcp.CallToolResult, QueryNoveltyOutput, error) {
	report, err := s.ports.Novelty.Query(ctx, input.DocumentPath, input.TopK)
	if err != nil {
		return nil, QueryNoveltyOutput{}, toolError(err)
	}

	output := QueryNoveltyOutput{
		Document:   report.Document,
		Threshold:  report.Threshold,
		Novel:      report.IsNovel(),
		Matches:    make([]NoveltyMatch, len(report.Results)),
		ResultPath: report.ResultPath,
	}
	for i, r := range report.Results {
		output.Matches[i] = NoveltyMatch{
			Rank:       r.Rank,
			Index:      r.Index,
			Title:      r.Title,
			URL:        r.URL,
			Similarity: r.Similarity,
			PDFPath:    r.PDFPath,
			Verdict:    r.Verdict.String(),
		}
	}

	return nil, output, nil
}

// handleCheckPlagiarism handles the check_plagiarism tool invocation.
func (s *Server) handleCheckPlagiarism(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckPlagiarismInput,
) (*mcp.CallToolResult, CheckPlagiarismOutput, error) {
	if s.ports.Plagiarism == nil {
		return nil, CheckPlagiarismOutput{}, ErrToolUnavailable
	}

	req := domain.PlagiarismRequest{
		Subject:    input.SubjectPath,
		References: input.ReferencePaths,
		OutputPath: input.OutputPath,
	}
	if input.SkipUnreadable {
		req.OnReferenceError = domain.ReferenceErrorSkip
	}

	report, err := s.ports.Plagiarism.Check(ctx, req)
	if err != nil {
		return nil, CheckPlagiarismOutput{}, toolError(err)
	}

	return nil, CheckPlagiarismOutput{
		ExactOverlap:      report.ExactOverlap,
		ParaphraseOverlap: report.ParaphraseOverlap,
		ExactCount:        report.Summary.ExactOverlapCount,
		ParaphraseCount:   report.Summary.ParaphraseOverlapCount,
		Omitted:           report.Summary.OmittedReferences,
		ReportPath:        input.OutputPath,
	}, nil
}

// handleIndexInfo handles the index_info tool invocation.
func (s *Server) handleIndexInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IndexInfoInput,
) (*mcp.CallToolResult, IndexInfoOutput, error) {
	if s.ports.Index == nil {
		return nil, IndexInfoOutput{}, ErrToolUnavailable
	}

	info, err := s.ports.Index.Info(ctx)
	if err != nil {
		return nil, IndexInfoOutput{}, toolError(err)
	}

	return nil, indexInfoOutput(info), nil
}

func indexInfoOutput(info *domain.IndexInfo) IndexInfoOutput {
	out := IndexInfoOutput{
		IndexPath:   info.IndexPath,
		MappingPath: info.MappingPath,
		Size:        info.Size,
		Dimension:   info.Dimension,
		Model:       info.Model,
		BuildID:     info.BuildID,
	}
	if !info.BuiltAt.IsZero() {
		out.BuiltAt = info.BuiltAt.UTC().Format(time.RFC3339)
	}
	return out
}
