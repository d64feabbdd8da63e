package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

var buildIndexCmd = &cobra.Command{
	Use:   "build-index [metadata-path]",
	Short: "Embed the corpus and build the vector index",
	Long: `Reads the corpus metadata (a JSON array or YAML sequence of papers with
title, url and pdf_path), resolves each paper's text from the parsed text
directory, embeds every paper and publishes the vector index together with
its id mapping.

Papers without a text file are still indexed (with empty text) so index
positions always match the metadata order. The metadata path defaults to
artifacts.metadata_path.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuildIndex,
}

func init() {
	rootCmd.AddCommand(buildIndexCmd)
}

func runBuildIndex(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(true, func(s *domain.AppSettings) {
		if len(args) == 1 {
			s.Artifacts.MetadataPath = args[0]
		}
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Index.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	cmd.Printf("Indexed %d documents", result.Documents)
	if result.EmptyTexts > 0 {
		cmd.Printf(" (%d without text)", result.EmptyTexts)
	}
	cmd.Println()
	cmd.Printf("  Index:   %s\n", result.IndexPath)
	cmd.Printf("  Mapping: %s\n", result.MappingPath)
	cmd.Printf("  Model:   %s (%d dimensions)\n", result.Model, result.Dimension)
	cmd.Printf("  Build:   %s\n", result.BuildID)
	return nil
}
