package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

var (
	plagiarismSkipUnreadable bool
	plagiarismJSON           bool
)

var checkPlagiarismCmd = &cobra.Command{
	Use:   "check-plagiarism <subject> <reference>... <output>",
	Short: "Compare a document against references chunk by chunk",
	Long: `Splits the subject and every reference into chunks of sentences, pools
the reference chunks and flags subject chunks that overlap:

  exact_overlap       TF-IDF cosine similarity (verbatim copying)
  paraphrase_overlap  embedding cosine similarity (reworded content)

The merged report is written as JSON to <output>. By default an unreadable
reference aborts the check; --skip-unreadable records it in the report
summary instead.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runCheckPlagiarism,
}

func init() {
	checkPlagiarismCmd.Flags().BoolVar(&plagiarismSkipUnreadable, "skip-unreadable", false,
		"skip references that cannot be read instead of failing")
	checkPlagiarismCmd.Flags().BoolVar(&plagiarismJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(checkPlagiarismCmd)
}

func runCheckPlagiarism(cmd *cobra.Command, args []string) error {
	req := domain.PlagiarismRequest{
		Subject:    args[0],
		References: args[1 : len(args)-1],
		OutputPath: args[len(args)-1],
	}
	if plagiarismSkipUnreadable {
		req.OnReferenceError = domain.ReferenceErrorSkip
	}

	rt, err := openRuntime(true, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.Plagiarism.Check(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("check plagiarism: %w", err)
	}

	if plagiarismJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Checked %s against %d references\n", report.Paper, len(report.References))
	cmd.Printf("  Exact overlap:      %d\n", report.Summary.ExactOverlapCount)
	cmd.Printf("  Paraphrase overlap: %d\n", report.Summary.ParaphraseOverlapCount)
	for _, o := range report.Summary.OmittedReferences {
		cmd.Printf("  Skipped %s: %s\n", o.Path, o.Reason)
	}
	cmd.Printf("Report written to %s\n", req.OutputPath)
	return nil
}
