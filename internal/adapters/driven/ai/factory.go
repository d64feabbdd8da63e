// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/novelcheck/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/novelcheck/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/novelcheck/internal/adapters/driven/embedding/resilient"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the configured provider wrapped with
// batching, rate limiting and retries.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrConfiguration)
	}
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("%w: unsupported embedding provider %q (use %s or %s)",
			domain.ErrConfiguration, settings.Provider, domain.AIProviderOllama, domain.AIProviderOpenAI)
	}
	if settings.Model == "" {
		return nil, fmt.Errorf("%w: embedding model is not set. Run 'novelcheck settings set embedding.model <name>'",
			domain.ErrConfiguration)
	}

	var (
		inner driven.EmbeddingService
		err   error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		inner = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		inner, err = createOpenAIEmbedding(settings)
		if err != nil {
			return nil, fmt.Errorf("%w: %w. Set embedding.api_key or OPENAI_API_KEY", domain.ErrConfiguration, err)
		}
	}

	logger.Debug("embedding provider %s, model %s, dimensions %d",
		settings.Provider, inner.ModelName(), inner.Dimensions())

	return resilient.New(inner, resilient.ConfigFromSettings(*settings)), nil
}

// CreateAndValidateEmbeddingService creates an embedding service and checks
// that the provider is reachable.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrProviderUnavailable, settings.Provider, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: settings.Dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    settings.Timeout,
		Dimensions: dimensions,
	})
}
