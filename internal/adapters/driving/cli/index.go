package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the vector index",
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show metadata of the published index",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

func init() {
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(false, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	info, err := rt.Index.Info(cmd.Context())
	if err != nil {
		return fmt.Errorf("index info: %w", err)
	}

	cmd.Printf("Index:      %s\n", info.IndexPath)
	cmd.Printf("Mapping:    %s\n", info.MappingPath)
	cmd.Printf("Documents:  %d\n", info.Size)
	cmd.Printf("Dimension:  %d\n", info.Dimension)
	cmd.Printf("Model:      %s\n", info.Model)
	cmd.Printf("Build ID:   %s\n", info.BuildID)
	if !info.BuiltAt.IsZero() {
		cmd.Printf("Built at:   %s\n", info.BuiltAt.Local().Format(time.RFC3339))
	}
	return nil
}
