package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API (or a compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
// The same provider and model must be used to build an index and to query it.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required,oneof=ollama openai"`

	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the known dimension for the model. Zero means auto.
	Dimensions int `validate:"gte=0"`

	// Timeout bounds every provider call.
	Timeout time.Duration `validate:"gt=0"`

	// BatchSize is the number of texts sent per provider call.
	BatchSize int `validate:"gte=1"`

	// Concurrency is the number of provider calls in flight at once.
	Concurrency int `validate:"gte=1"`

	// RequestsPerSecond limits the provider call rate.
	RequestsPerSecond float64 `validate:"gt=0"`

	// MaxRetries is the number of retries for transient provider failures.
	MaxRetries int `validate:"gte=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// NoveltySettings holds novelty query configuration.
type NoveltySettings struct {
	// SimilarityThreshold is the similarity at or above which a match is not novel.
	SimilarityThreshold float64 `validate:"gte=0,lte=1"`

	// TopK is the default number of nearest neighbours returned.
	TopK int `validate:"gte=1"`
}

// PlagiarismSettings holds overlap detection configuration.
type PlagiarismSettings struct {
	// ExactThreshold is the lexical detector threshold.
	ExactThreshold float64 `validate:"gte=0,lte=1"`

	// ParaphraseThreshold is the semantic detector threshold.
	ParaphraseThreshold float64 `validate:"gte=0,lte=1"`

	// ChunkSize is the number of sentence-like units per chunk.
	ChunkSize int `validate:"gte=1"`

	// OnReferenceError decides whether an unreadable reference aborts the check.
	OnReferenceError ReferenceErrorPolicy `validate:"required,oneof=fail skip"`
}

// ArtifactSettings holds the locations of inputs and persisted artifacts.
type ArtifactSettings struct {
	// MetadataPath is the corpus metadata file (JSON array or YAML sequence).
	MetadataPath string `validate:"required"`

	// ParsedTextDir holds extracted text, one .txt per corpus PDF.
	ParsedTextDir string `validate:"required"`

	// IndexPath is the persisted vector index.
	IndexPath string `validate:"required"`

	// MappingPath is the persisted id mapping.
	MappingPath string `validate:"required"`

	// ResultsDir receives novelty result artifacts.
	ResultsDir string `validate:"required"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	Novelty    NoveltySettings
	Plagiarism PlagiarismSettings
	Artifacts  ArtifactSettings
}

// Default values for settings.
const (
	DefaultSimilarityThreshold  = 0.40
	DefaultTopK                 = 5
	DefaultExactThreshold       = 0.80
	DefaultParaphraseThreshold  = 0.75
	DefaultChunkSize            = 5
	DefaultEmbeddingTimeout     = 30 * time.Second
	DefaultEmbeddingBatchSize   = 32
	DefaultEmbeddingConcurrency = 4
	DefaultRequestsPerSecond    = 10
	DefaultMaxRetries           = 3
)

// DefaultAppSettings returns settings with sensible defaults.
// The embedding default is the local Ollama packaging of all-MiniLM-L6-v2.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:          AIProviderOllama,
			Model:             DefaultEmbeddingModels()[AIProviderOllama],
			Timeout:           DefaultEmbeddingTimeout,
			BatchSize:         DefaultEmbeddingBatchSize,
			Concurrency:       DefaultEmbeddingConcurrency,
			RequestsPerSecond: DefaultRequestsPerSecond,
			MaxRetries:        DefaultMaxRetries,
		},
		Novelty: NoveltySettings{
			SimilarityThreshold: DefaultSimilarityThreshold,
			TopK:                DefaultTopK,
		},
		Plagiarism: PlagiarismSettings{
			ExactThreshold:      DefaultExactThreshold,
			ParaphraseThreshold: DefaultParaphraseThreshold,
			ChunkSize:           DefaultChunkSize,
			OnReferenceError:    ReferenceErrorFail,
		},
		Artifacts: ArtifactSettings{
			MetadataPath:  "data/papers.json",
			ParsedTextDir: "data/parsed_text",
			IndexPath:     "data/faiss_index.db",
			MappingPath:   "data/faiss_mapping.json",
			ResultsDir:    "data/results",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
