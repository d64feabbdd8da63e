// Package cli provides the novelcheck command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/novelcheck/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/novelcheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
	"github.com/custodia-labs/novelcheck/internal/core/services"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

var (
	// version is set at build time via ldflags or SetVersion.
	version = "dev"

	verbose   bool
	configDir string

	// settingsService is created on first use from --config-dir.
	// Tests replace it with one backed by an in-memory store.
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "novelcheck",
	Short: "Novelty and plagiarism checks for research papers",
	Long: `novelcheck indexes a corpus of research papers by embedding their text,
then ranks the corpus papers most similar to a new document and flags
passages that overlap with given reference documents.

Typical workflow:
  novelcheck build-index data/papers.json
  novelcheck query-novelty paper.pdf --top-k 5
  novelcheck check-plagiarism paper.txt ref1.txt ref2.txt report.json`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.novelcheck)")
}

// SetVersion sets the version reported by 'novelcheck version'.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and returns the process exit code.
// Each error kind maps to its own exit code so scripts can tell a missing
// index from a provider outage.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		return domain.KindOf(err).ExitCode()
	}
	return 0
}

// setup applies global flags and wires the settings service.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if settingsService != nil {
		return nil
	}
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("%w: open config: %w", domain.ErrConfiguration, err)
	}
	logger.Debug("Config: %s", store.Path())
	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}

// reportError prints err with a remedy hint for its kind.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	switch domain.KindOf(err) {
	case domain.KindMissingArtifact:
		if errors.Is(err, domain.ErrInconsistentIndex) {
			fmt.Fprintln(w, "The index and mapping on disk come from different builds.")
		}
		fmt.Fprintln(w, "Run 'novelcheck build-index' to create the index.")
	case domain.KindConfiguration:
		fmt.Fprintln(w, "Check your settings with 'novelcheck settings'.")
	case domain.KindExtraction:
		fmt.Fprintln(w, "Make sure the document contains extractable text (PDFs need pdftotext).")
	case domain.KindProvider:
		fmt.Fprintln(w, "Check that the embedding provider is running and reachable, then retry.")
	}
}

// requireSettings returns the settings service or an error when unset.
func requireSettings() (driving.SettingsService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}

// stdin is read by interactive prompts; tests replace it.
var stdin io.Reader = os.Stdin
