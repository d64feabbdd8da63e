package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedTimeout     = "embedding.timeout_seconds"
	keyEmbedBatchSize   = "embedding.batch_size"
	keyEmbedConcurrency = "embedding.concurrency"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyEmbedMaxRetries  = "embedding.max_retries"

	keyNoveltyThreshold = "novelty.similarity_threshold"
	keyNoveltyTopK      = "novelty.top_k"

	keyExactThreshold      = "plagiarism.exact_threshold"
	keyParaphraseThreshold = "plagiarism.paraphrase_threshold"
	keyChunkSize           = "plagiarism.chunk_size"
	keyOnReferenceError    = "plagiarism.on_reference_error"

	keyMetadataPath  = "artifacts.metadata_path"
	keyParsedTextDir = "artifacts.parsed_text_dir"
	keyIndexPath     = "artifacts.index_path"
	keyMappingPath   = "artifacts.mapping_path"
	keyResultsDir    = "artifacts.results_dir"
)

// Environment variables consulted when no API key is configured, in order.
var apiKeyEnvVars = []string{"NOVELCHECK_EMBEDDING_API_KEY", "OPENAI_API_KEY"}

// valueKind decides how Set coerces a raw string.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// keySpec describes one recognised config key.
type keySpec struct {
	key  string
	kind valueKind
	rule string // validator tag applied to the coerced value
}

// keySpecs lists every recognised key in display order.
var keySpecs = []keySpec{
	{keyEmbedProvider, kindString, "required,oneof=ollama openai"},
	{keyEmbedModel, kindString, "required"},
	{keyEmbedBaseURL, kindString, "omitempty,url"},
	{keyEmbedAPIKey, kindString, ""},
	{keyEmbedDimensions, kindInt, "gte=0"},
	{keyEmbedTimeout, kindFloat, "gt=0"},
	{keyEmbedBatchSize, kindInt, "gte=1"},
	{keyEmbedConcurrency, kindInt, "gte=1"},
	{keyEmbedRPS, kindFloat, "gt=0"},
	{keyEmbedMaxRetries, kindInt, "gte=0"},
	{keyNoveltyThreshold, kindFloat, "gte=0,lte=1"},
	{keyNoveltyTopK, kindInt, "gte=1"},
	{keyExactThreshold, kindFloat, "gte=0,lte=1"},
	{keyParaphraseThreshold, kindFloat, "gte=0,lte=1"},
	{keyChunkSize, kindInt, "gte=1"},
	{keyOnReferenceError, kindString, "required,oneof=fail skip"},
	{keyMetadataPath, kindString, "required"},
	{keyParsedTextDir, kindString, "required"},
	{keyIndexPath, kindString, "required"},
	{keyMappingPath, kindString, "required"},
	{keyResultsDir, kindString, "required"},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(),
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Keys absent from the store take their default value.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String())),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty uses the provider default
			APIKey:            s.apiKey(),
			Dimensions:        s.getInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
			Timeout:           s.getSeconds(keyEmbedTimeout, defaults.Embedding.Timeout),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			Concurrency:       s.getInt(keyEmbedConcurrency, defaults.Embedding.Concurrency),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond),
			MaxRetries:        s.getInt(keyEmbedMaxRetries, defaults.Embedding.MaxRetries),
		},
		Novelty: domain.NoveltySettings{
			SimilarityThreshold: s.getFloat(keyNoveltyThreshold, defaults.Novelty.SimilarityThreshold),
			TopK:                s.getInt(keyNoveltyTopK, defaults.Novelty.TopK),
		},
		Plagiarism: domain.PlagiarismSettings{
			ExactThreshold:      s.getFloat(keyExactThreshold, defaults.Plagiarism.ExactThreshold),
			ParaphraseThreshold: s.getFloat(keyParaphraseThreshold, defaults.Plagiarism.ParaphraseThreshold),
			ChunkSize:           s.getInt(keyChunkSize, defaults.Plagiarism.ChunkSize),
			OnReferenceError: domain.ReferenceErrorPolicy(
				s.getString(keyOnReferenceError, defaults.Plagiarism.OnReferenceError.String()),
			),
		},
		Artifacts: domain.ArtifactSettings{
			MetadataPath:  s.getString(keyMetadataPath, defaults.Artifacts.MetadataPath),
			ParsedTextDir: s.getString(keyParsedTextDir, defaults.Artifacts.ParsedTextDir),
			IndexPath:     s.getString(keyIndexPath, defaults.Artifacts.IndexPath),
			MappingPath:   s.getString(keyMappingPath, defaults.Artifacts.MappingPath),
			ResultsDir:    s.getString(keyResultsDir, defaults.Artifacts.ResultsDir),
		},
	}

	// The model default follows the provider so switching to openai
	// does not leave an ollama model name behind.
	model := s.configStore.GetString(keyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	settings.Embedding.Model = model

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	values := map[string]any{
		keyEmbedProvider:       settings.Embedding.Provider.String(),
		keyEmbedModel:          settings.Embedding.Model,
		keyEmbedBaseURL:        settings.Embedding.BaseURL,
		keyEmbedDimensions:     settings.Embedding.Dimensions,
		keyEmbedTimeout:        settings.Embedding.Timeout.Seconds(),
		keyEmbedBatchSize:      settings.Embedding.BatchSize,
		keyEmbedConcurrency:    settings.Embedding.Concurrency,
		keyEmbedRPS:            settings.Embedding.RequestsPerSecond,
		keyEmbedMaxRetries:     settings.Embedding.MaxRetries,
		keyNoveltyThreshold:    settings.Novelty.SimilarityThreshold,
		keyNoveltyTopK:         settings.Novelty.TopK,
		keyExactThreshold:      settings.Plagiarism.ExactThreshold,
		keyParaphraseThreshold: settings.Plagiarism.ParaphraseThreshold,
		keyChunkSize:           settings.Plagiarism.ChunkSize,
		keyOnReferenceError:    settings.Plagiarism.OnReferenceError.String(),
		keyMetadataPath:        settings.Artifacts.MetadataPath,
		keyParsedTextDir:       settings.Artifacts.ParsedTextDir,
		keyIndexPath:           settings.Artifacts.IndexPath,
		keyMappingPath:         settings.Artifacts.MappingPath,
		keyResultsDir:          settings.Artifacts.ResultsDir,
	}

	// A key that only came from the environment stays there.
	if key := settings.Embedding.APIKey; key != "" && (s.configStore.GetString(keyEmbedAPIKey) != "" || key != s.envAPIKey()) {
		values[keyEmbedAPIKey] = key
	}

	for _, ks := range keySpecs {
		val, ok := values[ks.key]
		if !ok {
			continue
		}
		if err := s.configStore.Set(ks.key, val); err != nil {
			return fmt.Errorf("save %s: %w", ks.key, err)
		}
	}

	return nil
}

// Set updates a single setting by its config key.
// The raw value is coerced to the key's type and checked against its rule.
func (s *SettingsService) Set(key, value string) error {
	ks, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	value = strings.TrimSpace(value)
	var coerced any
	switch ks.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidInput, key, value)
		}
		coerced = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidInput, key, value)
		}
		coerced = f
	default:
		coerced = value
	}

	if ks.rule != "" {
		if err := s.validate.Var(coerced, ks.rule); err != nil {
			return fmt.Errorf("%w: %s=%q %s", domain.ErrInvalidInput, key, value, describeValidation(err))
		}
	}

	if err := s.configStore.Set(key, coerced); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns all recognised config keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(keySpecs))
	for i, ks := range keySpecs {
		keys[i] = ks.key
	}
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.ValidateSettings(settings)
}

// ValidateSettings checks settings against their struct rules.
func (s *SettingsService) ValidateSettings(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings are required", domain.ErrConfiguration)
	}
	if err := s.validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, describeValidation(err))
	}
	if settings.Embedding.Provider.RequiresAPIKey() && settings.Embedding.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key (set %s or %s)",
			domain.ErrConfiguration, settings.Embedding.Provider, keyEmbedAPIKey, apiKeyEnvVars[0])
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// Numeric keys use presence rather than zero so an explicit 0 is kept.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
}

func (s *SettingsService) apiKey() string {
	if key := s.configStore.GetString(keyEmbedAPIKey); key != "" {
		return key
	}
	return s.envAPIKey()
}

func (s *SettingsService) envAPIKey() string {
	for _, name := range apiKeyEnvVars {
		if v := strings.TrimSpace(s.getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

func lookupKey(key string) (keySpec, bool) {
	for _, ks := range keySpecs {
		if ks.key == key {
			return ks, true
		}
	}
	return keySpec{}, false
}

// describeValidation renders validator errors as "Field: failed on 'tag'" pairs.
func describeValidation(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.Namespace()
		if field == "" {
			field = "value"
		}
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s=%s'", field, e.Tag(), e.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", field, e.Tag()))
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
