// Package openai provides an embedding service adapter using OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/novelcheck/internal/adapters/driven/embedding"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "text-embedding-3-small"
	DefaultTimeout        = 60 * time.Second
	DefaultMaxInputTokens = 8191

	// tokenEncoding is the tokenizer used by all current embedding models.
	tokenEncoding = "cl100k_base"

	// blankInput stands in for empty texts, which the API rejects.
	blankInput = " "
)

const providerName = "openai"

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only applicable to text-embedding-3-* models.
	Dimensions int

	// MaxInputTokens truncates each input to this many tokens.
	// Zero uses DefaultMaxInputTokens; negative disables truncation.
	MaxInputTokens int
}

// tokenizer encodes and decodes text to model tokens.
type tokenizer interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// EmbeddingService generates embeddings using OpenAI API.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	maxTokens  int

	tokOnce sync.Once
	tok     tokenizer
	loadTok func() (tokenizer, error)
}

// embeddingRequest is the OpenAI API request format.
type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse is the OpenAI API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputTokens == 0 {
		cfg.MaxInputTokens = DefaultMaxInputTokens
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = 1536
		}
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		maxTokens:  cfg.MaxInputTokens,
		loadTok: func() (tokenizer, error) {
			enc, err := tiktoken.GetEncoding(tokenEncoding)
			if err != nil {
				return nil, err
			}
			return enc, nil
		},
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
// The i-th embedding corresponds to the i-th text regardless of response order.
// Blank texts share the embedding of a single space.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	inputs := make([]string, 0, len(texts))
	slots := make([]int, len(texts))
	blank := -1
	for i, text := range texts {
		if strings.TrimSpace(text) != "" {
			slots[i] = len(inputs)
			inputs = append(inputs, text)
			continue
		}
		if blank < 0 {
			blank = len(inputs)
			inputs = append(inputs, blankInput)
		}
		slots[i] = blank
	}

	vecs, err := s.embed(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if blank < 0 {
		return vecs, nil
	}

	embeddings := make([][]float32, len(texts))
	for i, slot := range slots {
		if slot == blank {
			embeddings[i] = append([]float32(nil), vecs[slot]...)
			continue
		}
		embeddings[i] = vecs[slot]
	}
	return embeddings, nil
}

// embed posts texts to /embeddings and orders the result by index.
func (s *EmbeddingService) embed(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Model: s.model,
		Input: s.truncate(texts),
	}

	// Only include dimensions for text-embedding-3-* models
	if s.model == "text-embedding-3-small" || s.model == "text-embedding-3-large" {
		if s.dimensions > 0 {
			reqBody.Dimensions = s.dimensions
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embedResp embeddingResponse
	decodeErr := json.Unmarshal(body, &embedResp)

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if decodeErr == nil && embedResp.Error != nil {
			msg = embedResp.Error.Message
		}
		return nil, &embedding.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if embedResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", embedResp.Error.Message)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range for %d inputs", data.Index, len(texts))
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		embeddings[data.Index] = vec
	}
	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d", i)
		}
	}

	return embeddings, nil
}

// truncate cuts every input down to the token budget. When the tokenizer
// cannot be loaded the inputs are sent unchanged.
func (s *EmbeddingService) truncate(texts []string) []string {
	if s.maxTokens < 0 {
		return texts
	}

	s.tokOnce.Do(func() {
		tok, err := s.loadTok()
		if err != nil {
			logger.Warn("openai: tokenizer %s unavailable, inputs will not be truncated: %v", tokenEncoding, err)
			return
		}
		s.tok = tok
	})
	if s.tok == nil {
		return texts
	}

	out := make([]string, len(texts))
	for i, text := range texts {
		tokens := s.tok.Encode(text, nil, nil)
		if len(tokens) <= s.maxTokens {
			out[i] = text
			continue
		}
		logger.Debug("openai: truncating input %d from %d to %d tokens", i, len(tokens), s.maxTokens)
		out[i] = s.tok.Decode(tokens[:s.maxTokens])
	}
	return out
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &embedding.StatusError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
