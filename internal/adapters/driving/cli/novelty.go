package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

var (
	noveltyTopK      int
	noveltyThreshold float64
	noveltyJSON      bool
)

var queryNoveltyCmd = &cobra.Command{
	Use:   "query-novelty <document>",
	Short: "Find the corpus papers most similar to a document",
	Long: `Extracts the document's text, embeds it with the model the index was
built with and returns the nearest corpus papers.

Each match gets a similarity of 1 - d, where d is the squared Euclidean
distance between the embeddings. A match at or above the similarity
threshold marks the document as not novel.

The ranked list is saved as <results_dir>/<document>_similar.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryNovelty,
}

func init() {
	queryNoveltyCmd.Flags().IntVarP(&noveltyTopK, "top-k", "k", 0, "number of matches (default novelty.top_k)")
	queryNoveltyCmd.Flags().Float64Var(&noveltyThreshold, "threshold", 0, "similarity threshold (default novelty.similarity_threshold)")
	queryNoveltyCmd.Flags().BoolVar(&noveltyJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(queryNoveltyCmd)
}

// noveltyOutput is the JSON shape printed by --json.
type noveltyOutput struct {
	Document   string                 `json:"document"`
	Threshold  float64                `json:"threshold"`
	Novel      bool                   `json:"novel"`
	Results    []domain.NoveltyResult `json:"results"`
	ResultPath string                 `json:"result_path"`
}

func runQueryNovelty(cmd *cobra.Command, args []string) error {
	thresholdSet := cmd.Flags().Changed("threshold")
	rt, err := openRuntime(true, func(s *domain.AppSettings) {
		if thresholdSet {
			s.Novelty.SimilarityThreshold = noveltyThreshold
		}
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.Novelty.Query(cmd.Context(), args[0], noveltyTopK)
	if err != nil {
		return fmt.Errorf("query novelty: %w", err)
	}

	if noveltyJSON {
		return outputNoveltyJSON(cmd, report)
	}
	outputNoveltyText(cmd, report)
	return nil
}

func outputNoveltyJSON(cmd *cobra.Command, report *domain.NoveltyReport) error {
	results := report.Results
	if results == nil {
		results = []domain.NoveltyResult{}
	}
	data, err := json.MarshalIndent(noveltyOutput{
		Document:   report.Document,
		Threshold:  report.Threshold,
		Novel:      report.IsNovel(),
		Results:    results,
		ResultPath: report.ResultPath,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputNoveltyText(cmd *cobra.Command, report *domain.NoveltyReport) {
	if len(report.Results) == 0 {
		cmd.Println("The index is empty; nothing to compare against.")
		cmd.Printf("\nResults saved to %s\n", report.ResultPath)
		return
	}

	cmd.Printf("Top %d matches for %s (threshold %.2f):\n\n", len(report.Results), report.Document, report.Threshold)
	for _, r := range report.Results {
		cmd.Printf("  #%d %s\n", r.Rank, r.Title)
		cmd.Printf("     URL:        %s\n", r.URL)
		cmd.Printf("     Similarity: %.4f\n", r.Similarity)
		cmd.Printf("     Verdict:    %s\n", verdictLabel(r.Verdict))
		cmd.Println()
	}

	if report.IsNovel() {
		cmd.Println("No strong match: the document is likely novel.")
	} else {
		cmd.Println("At least one match is at or above the threshold: the document is NOT novel.")
	}
	cmd.Printf("Results saved to %s\n", report.ResultPath)
}

func verdictLabel(v domain.Verdict) string {
	switch v {
	case domain.VerdictNotNovel:
		return "NOT novel (very similar)"
	case domain.VerdictLikelyNovel:
		return "likely novel (no strong match)"
	default:
		return v.String()
	}
}
