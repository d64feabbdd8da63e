package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change embedding, threshold and artifact settings.

Settings are stored in config.toml under the config directory. Use
'novelcheck settings set <key> <value>' to change a single value or
'novelcheck settings embedding' to configure the provider interactively.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its key, for example:

  novelcheck settings set novelty.similarity_threshold 0.45
  novelcheck settings set plagiarism.on_reference_error skip
  novelcheck settings set embedding.provider openai

Run 'novelcheck settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Interactively choose the embedding provider and model, then check that
the provider is reachable. The index must be rebuilt after changing models.`,
	RunE: runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	e := settings.Embedding
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", e.Provider.Description())
	cmd.Printf("  Model: %s\n", e.Model)
	if e.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", e.BaseURL)
	}
	if e.Provider.RequiresAPIKey() {
		if e.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(e.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if e.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", e.Dimensions)
	}
	cmd.Printf("  Timeout: %s, batch size: %d, concurrency: %d\n", e.Timeout, e.BatchSize, e.Concurrency)
	cmd.Printf("  Rate limit: %g req/s, retries: %d\n", e.RequestsPerSecond, e.MaxRetries)
	cmd.Println()

	cmd.Println("[Novelty]")
	cmd.Printf("  Similarity threshold: %.2f\n", settings.Novelty.SimilarityThreshold)
	cmd.Printf("  Top K: %d\n", settings.Novelty.TopK)
	cmd.Println()

	p := settings.Plagiarism
	cmd.Println("[Plagiarism]")
	cmd.Printf("  Exact threshold: %.2f\n", p.ExactThreshold)
	cmd.Printf("  Paraphrase threshold: %.2f\n", p.ParaphraseThreshold)
	cmd.Printf("  Chunk size: %d\n", p.ChunkSize)
	cmd.Printf("  Unreadable references: %s\n", p.OnReferenceError)
	cmd.Println()

	a := settings.Artifacts
	cmd.Println("[Artifacts]")
	cmd.Printf("  Metadata: %s\n", a.MetadataPath)
	cmd.Printf("  Parsed text: %s\n", a.ParsedTextDir)
	cmd.Printf("  Index: %s\n", a.IndexPath)
	cmd.Printf("  Mapping: %s\n", a.MappingPath)
	cmd.Printf("  Results: %s\n", a.ResultsDir)
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'novelcheck settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	if err := svc.Set(args[0], args[1]); err != nil {
		return err
	}

	shown := args[1]
	if args[0] == "embedding.api_key" {
		shown = maskAPIKey(shown)
	}
	cmd.Printf("Set %s = %s\n", args[0], shown)
	if strings.HasPrefix(args[0], "embedding.provider") || strings.HasPrefix(args[0], "embedding.model") {
		cmd.Println("Rebuild the index with 'novelcheck build-index' to use the new model.")
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if _, err := requireSettings(); err != nil {
		return err
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(stdin))
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	values := [][2]string{
		{"embedding.provider", selectedProvider.String()},
		{"embedding.model", model},
	}

	if selectedProvider.IsLocal() {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		values = append(values, [2]string{"embedding.base_url", readLine(reader)})
	} else {
		values = append(values, [2]string{"embedding.base_url", ""})
	}

	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key (leave empty to use OPENAI_API_KEY): ")
		apiKey := readPassword(reader)
		cmd.Println()
		if apiKey != "" {
			values = append(values, [2]string{"embedding.api_key", apiKey})
		}
	}

	for _, kv := range values {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure embedding provider: %w", err)
		}
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Rebuild the index with 'novelcheck build-index' to use the new model.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal and falls back to
// a plain line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
